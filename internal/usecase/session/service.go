package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/domain/repositories"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
	"github.com/pitchlabs/salescoach/pkg/ai"
)

// VoiceRoomClient provisions live voice rooms for sessions run over audio.
type VoiceRoomClient interface {
	CreateRoom(ctx context.Context, name string) error
	DeleteRoom(ctx context.Context, name string) error
	GenerateToken(roomName, identity string) (string, error)
}

// ArchiveStore persists a finished session's transcript to object storage.
type ArchiveStore interface {
	ArchiveTranscript(ctx context.Context, sessionID uuid.UUID, entries []entities.TranscriptEntry) (string, error)
}

// Analyzer kicks off post-session analysis. Runs detached from the request
// that ended the session.
type Analyzer interface {
	RunAsync(sessionID uuid.UUID)
}

// TurnInput carries one trainee turn plus the live timing signals the
// behavior model needs.
type TurnInput struct {
	Utterance             string
	AgentSpeakingDuration float64
	SilenceDuration       float64
}

// TurnResult is the buyer's side of a completed turn.
type TurnResult struct {
	Reply              string
	Emotion            engine.Emotion
	Interrupted        bool
	InterruptionReason engine.InterruptionReason
	Phase              entities.SessionPhase
	PhaseAdvanced      bool
}

// Service orchestrates training sessions: turn processing, phase movement,
// and the session lifecycle.
type Service struct {
	sessions repositories.SessionRepository
	groq     *ai.GroqClient
	phases   *engine.PhaseController
	behavior *engine.BehaviorModel
	checker  *engine.ComplianceEngine
	voice    VoiceRoomClient
	archive  ArchiveStore
	analyzer Analyzer
	guard    *turnGuard
	logger   *zap.Logger
}

// NewService constructs the session service. voice and archive may be nil
// when those integrations are disabled.
func NewService(
	sessions repositories.SessionRepository,
	groq *ai.GroqClient,
	phases *engine.PhaseController,
	behavior *engine.BehaviorModel,
	checker *engine.ComplianceEngine,
	voice VoiceRoomClient,
	archive ArchiveStore,
	analyzer Analyzer,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		groq:     groq,
		phases:   phases,
		behavior: behavior,
		checker:  checker,
		voice:    voice,
		archive:  archive,
		analyzer: analyzer,
		guard:    newTurnGuard(),
		logger:   logger,
	}
}

// StartInput configures a new session.
type StartInput struct {
	UserID    uuid.UUID
	Persona   entities.PersonaConfig
	WithVoice bool
}

// StartResult is the created session plus an optional voice room token.
type StartResult struct {
	Session    *entities.TrainingSession
	VoiceToken string
}

// Start validates the persona and creates an active session in the rapport
// phase. With voice enabled it also provisions a live room and a join token.
func (s *Service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	if err := input.Persona.Validate(); err != nil {
		return nil, apperrors.ErrPersonaInvalid(err.Error())
	}

	sess := entities.NewTrainingSession(input.UserID, input.Persona)

	var token string
	if input.WithVoice && s.voice != nil {
		roomName := fmt.Sprintf("coach-%s", sess.ID)
		if err := s.voice.CreateRoom(ctx, roomName); err != nil {
			return nil, apperrors.ErrVoiceRoomFailed("create", err)
		}
		t, err := s.voice.GenerateToken(roomName, input.UserID.String())
		if err != nil {
			return nil, apperrors.ErrVoiceRoomFailed("token", err)
		}
		sess.VoiceRoomName = roomName
		token = t
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create session", err)
	}

	s.logger.Info("session started",
		zap.String("session_id", sess.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("personality", input.Persona.Personality),
		zap.Bool("voice", input.WithVoice),
	)
	return &StartResult{Session: sess, VoiceToken: token}, nil
}

// Get returns a session after an ownership check.
func (s *Service) Get(ctx context.Context, userID, sessionID uuid.UUID) (*entities.TrainingSession, error) {
	return s.load(ctx, userID, sessionID)
}

// List returns the caller's sessions, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.TrainingSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	found, err := s.sessions.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list sessions", err)
	}
	return found, nil
}

// Transcript returns the ordered transcript after an ownership check.
func (s *Service) Transcript(ctx context.Context, userID, sessionID uuid.UUID) ([]entities.TranscriptEntry, error) {
	if _, err := s.load(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.sessions.Entries(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load transcript", err)
	}
	return entries, nil
}

// Respond processes one trainee turn: it decides whether the buyer interrupts,
// otherwise generates the buyer's reply, appends both sides to the transcript,
// scans the trainee utterance for compliance issues off the request path, and
// evaluates phase advancement.
func (s *Service) Respond(ctx context.Context, userID, sessionID uuid.UUID, input TurnInput) (*TurnResult, error) {
	utterance := strings.TrimSpace(input.Utterance)
	if utterance == "" {
		return nil, apperrors.ErrInvalidArgument("utterance is required")
	}

	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, apperrors.ErrSessionEnded(sessionID.String())
	}

	if !s.guard.begin(sessionID, utterance) {
		return nil, apperrors.ErrDuplicateUtterance(sessionID.String())
	}
	committed := false
	defer func() { s.guard.finish(sessionID, utterance, committed) }()

	history, err := s.sessions.Entries(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load transcript", err)
	}

	persona := sess.Persona.Data()
	reply, emotion, interruption := s.buyerTurn(ctx, persona, history, utterance, input)
	if reply == "" {
		return nil, apperrors.ErrAIServiceUnavailable("groq")
	}

	seq := len(history)
	traineeEntry := entities.NewTranscriptEntry(sessionID, seq, entities.SpeakerTrainee, utterance, sess.CurrentPhase)
	if err := s.sessions.AppendEntry(ctx, traineeEntry); err != nil {
		return nil, apperrors.ErrDBQueryFailed("append entry", err)
	}
	buyerEntry := entities.NewTranscriptEntry(sessionID, seq+1, entities.SpeakerCounterpart, reply, sess.CurrentPhase)
	if err := s.sessions.AppendEntry(ctx, buyerEntry); err != nil {
		return nil, apperrors.ErrDBQueryFailed("append entry", err)
	}
	committed = true

	s.scanAsync(sessionID, utterance, seq)

	sess.EntriesSinceAdvance += 2
	advanced := false
	decision := s.phases.Advance(sess.CurrentPhase, sess.EntriesSinceAdvance, utterance)
	if decision.ShouldAdvance {
		s.logger.Info("phase advanced",
			zap.String("session_id", sessionID.String()),
			zap.String("from", string(sess.CurrentPhase)),
			zap.String("to", string(decision.NextPhase)),
		)
		sess.CurrentPhase = decision.NextPhase
		sess.EntriesSinceAdvance = 0
		advanced = true
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update session", err)
	}

	result := &TurnResult{
		Reply:         reply,
		Emotion:       emotion,
		Phase:         sess.CurrentPhase,
		PhaseAdvanced: advanced,
	}
	if interruption.ShouldInterrupt {
		result.Interrupted = true
		result.InterruptionReason = interruption.Reason
	}
	return result, nil
}

// buyerTurn resolves the buyer's reply: a canned interruption when one of the
// triggers fires, otherwise a generated response.
func (s *Service) buyerTurn(
	ctx context.Context,
	persona entities.PersonaConfig,
	history []entities.TranscriptEntry,
	utterance string,
	input TurnInput,
) (string, engine.Emotion, engine.InterruptionDecision) {
	var priorTrainee []string
	var lastBuyer string
	for _, e := range history {
		switch e.Speaker {
		case entities.SpeakerTrainee:
			priorTrainee = append(priorTrainee, e.Content)
		case entities.SpeakerCounterpart:
			lastBuyer = e.Content
		}
	}

	ictx := engine.InterruptionContext{
		AgentSpeakingDuration: input.AgentSpeakingDuration,
		SilenceDuration:       input.SilenceDuration,
		RepetitionCount:       s.behavior.RepetitionCount(utterance, priorTrainee),
		BuyerQuestionIgnored:  lastBuyer != "" && s.behavior.QuestionIgnored(lastBuyer, utterance),
		Personality:           persona.Personality,
		ResistanceLevel:       persona.ResistanceLevel,
	}
	if decision := s.behavior.ShouldInterrupt(ictx); decision.ShouldInterrupt {
		return decision.Phrase, s.behavior.ClassifyEmotion(decision.Phrase, persona.Personality), decision
	}

	reply, err := s.generateReply(ctx, persona, history, utterance)
	if err != nil {
		s.logger.Error("buyer reply generation failed", zap.Error(err))
		return "", engine.EmotionNeutral, engine.InterruptionDecision{}
	}
	return reply, s.behavior.ClassifyEmotion(reply, persona.Personality), engine.InterruptionDecision{}
}

// generateReply calls the LLM with a short retry; transient failures should
// not cost the trainee their turn.
func (s *Service) generateReply(
	ctx context.Context,
	persona entities.PersonaConfig,
	history []entities.TranscriptEntry,
	utterance string,
) (string, error) {
	messages := make([]ai.ChatMessage, 0, len(history)+1)
	for _, e := range history {
		role := "assistant"
		if e.Speaker == entities.SpeakerTrainee {
			role = "user"
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: e.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: utterance})

	var reply string
	call := func() error {
		r, err := s.groq.GenerateBuyerTurn(ctx, personaPrompt(persona), messages)
		if err != nil {
			return err
		}
		reply = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second

	if err := backoff.Retry(call, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// scanAsync runs the compliance scan off the request path so policy checks
// never add latency to a turn.
func (s *Service) scanAsync(sessionID uuid.UUID, utterance string, transcriptIndex int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		violations := s.checker.Scan(utterance, transcriptIndex)
		if len(violations) == 0 {
			return
		}
		if err := s.sessions.AppendViolations(ctx, sessionID, violations); err != nil {
			s.logger.Error("failed to record violations",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
			return
		}
		s.logger.Warn("compliance violations detected",
			zap.String("session_id", sessionID.String()),
			zap.Int("count", len(violations)),
		)
	}()
}

// Advance honors an explicit phase-advance request from the client.
func (s *Service) Advance(ctx context.Context, userID, sessionID uuid.UUID) (entities.SessionPhase, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return "", err
	}
	if !sess.IsActive() {
		return "", apperrors.ErrSessionEnded(sessionID.String())
	}

	decision := s.phases.ManualAdvance(sess.CurrentPhase)
	if !decision.ShouldAdvance {
		return "", apperrors.ErrSessionInvalidState(sessionID.String(), string(sess.CurrentPhase), "a non-terminal phase")
	}
	sess.CurrentPhase = decision.NextPhase
	sess.EntriesSinceAdvance = 0
	if err := s.sessions.Update(ctx, sess); err != nil {
		return "", apperrors.ErrDBQueryFailed("update session", err)
	}
	return sess.CurrentPhase, nil
}

// End marks the session completed, archives the transcript, tears down the
// voice room, and kicks off analysis.
func (s *Service) End(ctx context.Context, userID, sessionID uuid.UUID) (*entities.TrainingSession, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, apperrors.ErrSessionEnded(sessionID.String())
	}

	sess.End(int(time.Since(sess.StartedAt).Seconds()))

	if s.archive != nil {
		entries, err := s.sessions.Entries(ctx, sessionID)
		if err == nil && len(entries) > 0 {
			url, archiveErr := s.archive.ArchiveTranscript(ctx, sessionID, entries)
			if archiveErr != nil {
				s.logger.Error("transcript archive failed",
					zap.String("session_id", sessionID.String()),
					zap.Error(archiveErr),
				)
			} else {
				sess.ArchiveURL = url
			}
		}
	}

	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update session", err)
	}

	if sess.VoiceRoomName != "" && s.voice != nil {
		if err := s.voice.DeleteRoom(ctx, sess.VoiceRoomName); err != nil {
			s.logger.Warn("voice room teardown failed",
				zap.String("room", sess.VoiceRoomName),
				zap.Error(err),
			)
		}
	}

	s.guard.forget(sessionID)

	if s.analyzer != nil {
		s.analyzer.RunAsync(sessionID)
	}

	s.logger.Info("session ended",
		zap.String("session_id", sessionID.String()),
		zap.Int("duration_seconds", sess.DurationSeconds),
	)
	return sess, nil
}

// load fetches the session and enforces ownership.
func (s *Service) load(ctx context.Context, userID, sessionID uuid.UUID) (*entities.TrainingSession, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound(sessionID.String())
		}
		return nil, apperrors.ErrDBQueryFailed("find session", err)
	}
	if sess.UserID != userID {
		return nil, apperrors.ErrSessionAccessDenied(sessionID.String())
	}
	return sess, nil
}

// personaPrompt renders the buyer persona into the LLM system prompt.
func personaPrompt(p entities.PersonaConfig) string {
	var b strings.Builder
	b.WriteString("You are roleplaying a home buyer in a sales training conversation. ")
	b.WriteString("Stay in character. Reply with one short conversational turn, no narration.\n")
	fmt.Fprintf(&b, "Personality: %s.\n", p.Personality)
	fmt.Fprintf(&b, "Buying experience: %s.\n", p.ExperienceLevel)
	fmt.Fprintf(&b, "Emotional state: %s.\n", p.EmotionalState)
	fmt.Fprintf(&b, "Comfort discussing finances: %s.\n", p.FinancialComfort)
	fmt.Fprintf(&b, "Resistance to sales pressure: %s.\n", p.ResistanceLevel)
	fmt.Fprintf(&b, "Depth of questions you ask: %s.\n", p.QuestionDepth)
	return b.String()
}
