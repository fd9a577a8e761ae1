package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/domain/repositories"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
	"github.com/pitchlabs/salescoach/pkg/ai"
)

// DefaultAnalysisTimeout bounds the qualitative pass. On expiry the session
// still resolves to a completed report via the default feedback.
const DefaultAnalysisTimeout = 25 * time.Second

// minScorableEntries is the smallest transcript worth scoring. Shorter
// transcripts get the fixed default report, marked completed, never an error.
const minScorableEntries = 2

// StatusStore tracks the analysis status of a session so clients can poll
// while the qualitative pass runs.
type StatusStore interface {
	SetStatus(ctx context.Context, sessionID uuid.UUID, status string) error
	GetStatus(ctx context.Context, sessionID uuid.UUID) (string, error)
}

// Orchestrator sequences post-session analysis: heuristic scoring, the
// bounded qualitative LLM pass, fallback handling, and persistence.
type Orchestrator struct {
	sessions repositories.SessionRepository
	reports  repositories.ReportRepository
	scorer   *engine.ScoringEngine
	checker  *engine.ComplianceEngine
	groq     *ai.GroqClient
	parser   *Parser
	status   StatusStore
	timeout  time.Duration
	logger   *zap.Logger
}

// NewOrchestrator constructs the analysis orchestrator. A zero timeout gets
// the default.
func NewOrchestrator(
	sessions repositories.SessionRepository,
	reports repositories.ReportRepository,
	scorer *engine.ScoringEngine,
	checker *engine.ComplianceEngine,
	groq *ai.GroqClient,
	status StatusStore,
	timeout time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	return &Orchestrator{
		sessions: sessions,
		reports:  reports,
		scorer:   scorer,
		checker:  checker,
		groq:     groq,
		parser:   NewParser(),
		status:   status,
		timeout:  timeout,
		logger:   logger,
	}
}

// RunAsync starts analysis detached from the calling request.
func (o *Orchestrator) RunAsync(sessionID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout+10*time.Second)
		defer cancel()
		if err := o.Run(ctx, sessionID); err != nil {
			o.logger.Error("analysis run failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Run computes and persists the coach report for a session. Idempotent: the
// same transcript yields the same heuristic numbers, and Save replaces any
// prior report. The returned error covers persistence only; qualitative
// failures degrade to the default feedback instead of failing the run.
func (o *Orchestrator) Run(ctx context.Context, sessionID uuid.UUID) error {
	o.setStatus(ctx, sessionID, entities.AnalysisStatusProcessing)

	entries, err := o.sessions.Entries(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	var report *entities.CoachReport
	if len(entries) < minScorableEntries {
		report = o.defaultReport(sessionID)
	} else {
		report = o.scorer.Score(entries)
		report.SessionID = sessionID
		o.qualitativePass(ctx, report, entries)
	}
	report.AnalysisStatus = entities.AnalysisStatusCompleted

	if err := o.reports.Save(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	o.setStatus(ctx, sessionID, entities.AnalysisStatusCompleted)

	o.logger.Info("analysis completed",
		zap.String("session_id", sessionID.String()),
		zap.Int("overall_score", report.OverallScore),
		zap.String("grade", report.Grade),
		zap.String("source", report.Source),
	)
	return nil
}

// Report returns the stored report for a session, or the current analysis
// status when no report exists yet.
func (o *Orchestrator) Report(ctx context.Context, sessionID uuid.UUID) (*entities.CoachReport, string, error) {
	report, err := o.reports.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entities.ErrReportNotFound) {
			status, serr := o.status.GetStatus(ctx, sessionID)
			if serr != nil || status == "" {
				return nil, "", apperrors.ErrReportNotFound(sessionID.String())
			}
			return nil, status, nil
		}
		return nil, "", apperrors.ErrDBQueryFailed("find report", err)
	}
	return report, report.AnalysisStatus, nil
}

// qualitativePass runs the LLM coaching analysis under the hard timeout and
// attaches the result to the report. Timeout, transport failure, and
// malformed output all fall back to the fixed default feedback.
func (o *Orchestrator) qualitativePass(ctx context.Context, report *entities.CoachReport, entries []entities.TranscriptEntry) {
	qctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.groq.GenerateCoachingAnalysis(qctx, coachingPrompt(entries))
	if err != nil {
		o.logger.Warn("qualitative pass failed, using default feedback", zap.Error(err))
		report.Feedback = datatypes.NewJSONType(DefaultFeedback())
		report.Source = entities.ScoreSourceDefault
		return
	}

	feedback, err := o.parser.Parse(raw)
	if err != nil {
		o.logger.Warn("qualitative output unparseable, using default feedback", zap.Error(err))
		report.Feedback = datatypes.NewJSONType(DefaultFeedback())
		report.Source = entities.ScoreSourceDefault
		return
	}

	report.Feedback = datatypes.NewJSONType(*feedback)
	report.Source = entities.ScoreSourceQualitative

	// AI-reported issues ride along in the persisted flags but never touch
	// the deterministic gate.
	if len(feedback.ComplianceIssues) > 0 {
		external := make([]entities.ComplianceViolation, 0, len(feedback.ComplianceIssues))
		for _, issue := range feedback.ComplianceIssues {
			external = append(external, entities.ComplianceViolation{
				RuleID:    "ai.review",
				Category:  entities.CategoryEthics,
				Severity:  entities.SeverityInfo,
				Message:   issue,
				Timestamp: time.Now(),
			})
		}
		merged := o.checker.MergeExternal(report.ComplianceFlags, external)
		report.ComplianceFlags = datatypes.NewJSONSlice(merged)
	}
}

func (o *Orchestrator) setStatus(ctx context.Context, sessionID uuid.UUID, status string) {
	if o.status == nil {
		return
	}
	if err := o.status.SetStatus(ctx, sessionID, status); err != nil {
		o.logger.Warn("status update failed",
			zap.String("session_id", sessionID.String()),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}

// defaultReport is the fixed report for transcripts too short to score.
// Byte-for-byte stable across calls apart from row identity and timestamps.
func (o *Orchestrator) defaultReport(sessionID uuid.UUID) *entities.CoachReport {
	score := entities.GradeScore("B")
	phaseScores := make(map[entities.SessionPhase]int, len(entities.PhaseOrder))
	for _, p := range entities.PhaseOrder {
		phaseScores[p] = score
	}
	return &entities.CoachReport{
		SessionID:      sessionID,
		PhaseScores:    datatypes.NewJSONType(phaseScores),
		OverallScore:   score,
		Grade:          "B",
		CompliancePass: true,
		Feedback:       datatypes.NewJSONType(DefaultFeedback()),
		Source:         entities.ScoreSourceDefault,
	}
}

// DefaultFeedback is the neutral fallback used when the qualitative pass is
// unavailable or the transcript is too short to analyze.
func DefaultFeedback() entities.SessionFeedback {
	return entities.SessionFeedback{
		SkillGrades: map[string]string{
			"rapport":       "B",
			"discovery":     "B",
			"qualification": "B",
			"framing":       "B",
			"closing":       "B",
		},
		Strengths: []string{
			"You showed up and put in the reps. Consistent practice is what moves the needle.",
		},
		Improvements: []string{
			"Keep sessions going a bit longer so your coach has more conversation to work with.",
		},
		FocusArea: "Run a full conversation end to end, from rapport through asking for a next step.",
		Summary:   "Solid practice session. A longer conversation next time will unlock more detailed feedback.",
	}
}

// coachingPrompt renders the transcript into the qualitative analysis prompt.
func coachingPrompt(entries []entities.TranscriptEntry) string {
	var b strings.Builder
	b.WriteString("You are a sales coach reviewing a practice conversation between a ")
	b.WriteString("real-estate agent in training (AGENT) and a simulated buyer (BUYER).\n")
	b.WriteString("Return ONLY a JSON object with these keys: ")
	b.WriteString(`"skill_grades" (object mapping skill name to letter grade A+..F), `)
	b.WriteString(`"strengths" (array of strings), "improvements" (array of strings), `)
	b.WriteString(`"focus_area" (string), "compliance_issues" (array of strings), "summary" (string).`)
	b.WriteString("\n\nTranscript:\n")
	for _, e := range entries {
		label := "BUYER"
		if e.Speaker == entities.SpeakerTrainee {
			label = "AGENT"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, e.Content)
	}
	return b.String()
}
