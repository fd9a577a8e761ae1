package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report source constants: which scoring path produced the feedback fields.
const (
	ScoreSourceHeuristic   = "heuristic"
	ScoreSourceQualitative = "qualitative"
	ScoreSourceDefault     = "default"
)

// Analysis status constants.
const (
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
)

// SessionFeedback is the structured output of the qualitative LLM coaching
// pass: per-skill letter grades plus narrative guidance.
type SessionFeedback struct {
	SkillGrades      map[string]string `json:"skill_grades"`
	Strengths        []string          `json:"strengths"`
	Improvements     []string          `json:"improvements"`
	FocusArea        string            `json:"focus_area"`
	ComplianceIssues []string          `json:"compliance_issues"`
	Summary          string            `json:"summary"`
}

// CoachReport is the persisted scoring output for a completed session.
// Regeneration replaces the row wholesale; a report is never patched in place.
type CoachReport struct {
	ID              uuid.UUID                                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID       uuid.UUID                                `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`
	PhaseScores     datatypes.JSONType[map[SessionPhase]int] `json:"phase_scores" gorm:"type:jsonb"`
	OverallScore    int                                      `json:"overall_score"`
	Grade           string                                   `json:"grade" gorm:"type:varchar(3)"`
	CompliancePass  bool                                     `json:"compliance_pass"`
	ComplianceFlags datatypes.JSONSlice[ComplianceViolation] `json:"compliance_flags,omitempty" gorm:"type:jsonb"`
	Strengths       datatypes.JSONSlice[string]              `json:"strengths,omitempty" gorm:"type:jsonb"`
	Improvements    datatypes.JSONSlice[string]              `json:"improvements,omitempty" gorm:"type:jsonb"`
	NextDrill       string                                   `json:"next_drill_recommendation,omitempty" gorm:"type:text"`
	Feedback        datatypes.JSONType[SessionFeedback]      `json:"feedback,omitempty" gorm:"type:jsonb"`
	Source          string                                   `json:"source" gorm:"type:varchar(20)"`
	AnalysisStatus  string                                   `json:"analysis_status" gorm:"type:varchar(20);default:'processing'"`
	CreatedAt       time.Time                                `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                                `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CoachReport) TableName() string {
	return "coach_reports"
}

// NewCoachReport creates a report shell for a session.
func NewCoachReport(sessionID uuid.UUID) *CoachReport {
	return &CoachReport{
		ID:             uuid.New(),
		SessionID:      sessionID,
		AnalysisStatus: AnalysisStatusProcessing,
	}
}

// gradeScores converts a letter grade to a numeric score for persistence when
// only a letter grade is available.
var gradeScores = map[string]int{
	"A+": 100, "A": 95, "A-": 90,
	"B+": 87, "B": 83, "B-": 80,
	"C+": 77, "C": 73, "C-": 70,
	"D+": 67, "D": 63, "D-": 60,
	"F": 50,
}

// GradeScore maps a letter grade to its fixed numeric score. Unknown grades
// map to the F score rather than zero so a malformed grade cannot wipe out a
// trainee's numeric history.
func GradeScore(grade string) int {
	if s, ok := gradeScores[grade]; ok {
		return s
	}
	return gradeScores["F"]
}
