package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
	"github.com/pitchlabs/salescoach/pkg/ai"
	"github.com/pitchlabs/salescoach/pkg/config"
)

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*entities.TrainingSession
	entries    map[uuid.UUID][]entities.TranscriptEntry
	violations map[uuid.UUID][]entities.ComplianceViolation
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:   make(map[uuid.UUID]*entities.TrainingSession),
		entries:    make(map[uuid.UUID][]entities.TranscriptEntry),
		violations: make(map[uuid.UUID][]entities.ComplianceViolation),
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entities.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.TrainingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entities.TrainingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TrainingSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *entities.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) AppendEntry(_ context.Context, e *entities.TranscriptEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.SessionID] = append(r.entries[e.SessionID], *e)
	return nil
}

func (r *fakeSessionRepo) Entries(_ context.Context, sessionID uuid.UUID) ([]entities.TranscriptEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.TranscriptEntry(nil), r.entries[sessionID]...), nil
}

func (r *fakeSessionRepo) AppendViolations(_ context.Context, sessionID uuid.UUID, v []entities.ComplianceViolation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations[sessionID] = append(r.violations[sessionID], v...)
	return nil
}

func (r *fakeSessionRepo) violationCount(sessionID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.violations[sessionID])
}

// groqStub serves canned buyer replies.
func groqStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func newTestService(t *testing.T, repo *fakeSessionRepo, groqURL string) *Service {
	t.Helper()
	return NewService(
		repo,
		ai.NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: groqURL}),
		engine.NewPhaseController(),
		engine.NewBehaviorModel(engine.DefaultBehaviorConfig()),
		engine.NewComplianceEngine(),
		nil, nil, nil,
		zap.NewNop(),
	)
}

func startSession(t *testing.T, svc *Service, userID uuid.UUID) *entities.TrainingSession {
	t.Helper()
	res, err := svc.Start(context.Background(), StartInput{
		UserID:  userID,
		Persona: entities.PersonaConfig{Personality: entities.PersonalityFriendly},
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return res.Session
}

func TestStartRejectsUnknownPersonality(t *testing.T) {
	svc := newTestService(t, newFakeSessionRepo(), "http://unused.invalid")

	_, err := svc.Start(context.Background(), StartInput{
		UserID:  uuid.New(),
		Persona: entities.PersonaConfig{Personality: "unhinged"},
	})
	if err == nil {
		t.Fatalf("expected a persona validation error")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_PERSONA_INVALID {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRespondAppendsBothSides(t *testing.T) {
	ts := groqStub(t, "We just moved here for work, actually.")
	defer ts.Close()

	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, ts.URL)
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	result, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{
		Utterance: "Welcome in! What brought you to the area?",
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if result.Reply != "We just moved here for work, actually." {
		t.Errorf("Reply = %q", result.Reply)
	}
	if result.Interrupted {
		t.Errorf("unexpected interruption")
	}
	if result.Phase != entities.PhaseRapport {
		t.Errorf("Phase = %q, want rapport", result.Phase)
	}

	entries, _ := repo.Entries(context.Background(), sess.ID)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Speaker != entities.SpeakerTrainee || entries[1].Speaker != entities.SpeakerCounterpart {
		t.Errorf("entries out of order: %+v", entries)
	}
	if entries[0].Phase != entities.PhaseRapport {
		t.Errorf("entry phase = %q, want rapport", entries[0].Phase)
	}
}

func TestRespondRejectsDuplicateUtterance(t *testing.T) {
	ts := groqStub(t, "Sure.")
	defer ts.Close()

	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, ts.URL)
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	if _, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{Utterance: "How is your day going?"}); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	_, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{Utterance: "How is your day going?"})
	if err == nil {
		t.Fatalf("duplicate utterance accepted")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_DUPLICATE_UTTERANCE {
		t.Errorf("unexpected error: %v", err)
	}

	// A different utterance goes through.
	if _, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{Utterance: "What neighborhoods are you drawn to?"}); err != nil {
		t.Errorf("distinct follow-up rejected: %v", err)
	}
}

func TestRespondInterruptsOnMonologue(t *testing.T) {
	// Groq stub that fails the test if called: an interruption must not
	// reach the LLM.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("LLM called during an interruption")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, ts.URL)
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	result, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{
		Utterance:             "Let me tell you all about the market conditions this quarter.",
		AgentSpeakingDuration: 120,
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if !result.Interrupted {
		t.Fatalf("expected an interruption after a two-minute monologue")
	}
	if result.InterruptionReason != engine.ReasonAgentMonologue {
		t.Errorf("Reason = %q, want %q", result.InterruptionReason, engine.ReasonAgentMonologue)
	}
	if result.Reply == "" {
		t.Errorf("interruption with no phrase")
	}
}

func TestRespondRecordsViolationsAsync(t *testing.T) {
	ts := groqStub(t, "Okay...")
	defer ts.Close()

	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, ts.URL)
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	_, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{
		Utterance: "This one is guaranteed to appreciate, trust me.",
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.violationCount(sess.ID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("violation never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRespondAdvancesPhase(t *testing.T) {
	ts := groqStub(t, "Nice talking with you too.")
	defer ts.Close()

	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, ts.URL)
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	turns := []string{
		"Welcome in, can I get you anything?",
		"How long have you been looking around this area?",
	}
	for _, u := range turns {
		if _, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{Utterance: u}); err != nil {
			t.Fatalf("turn %q failed: %v", u, err)
		}
	}

	// Third turn carries a rapport completion phrase with 4 entries banked.
	result, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{
		Utterance: "It was so nice to meet you both, truly.",
	})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if !result.PhaseAdvanced {
		t.Fatalf("expected phase advancement")
	}
	if result.Phase != entities.PhaseMoneyQuestions {
		t.Errorf("Phase = %q, want money_questions", result.Phase)
	}

	stored, _ := repo.FindByID(context.Background(), sess.ID)
	if stored.CurrentPhase != entities.PhaseMoneyQuestions {
		t.Errorf("persisted phase = %q", stored.CurrentPhase)
	}
	if stored.EntriesSinceAdvance != 0 {
		t.Errorf("EntriesSinceAdvance = %d, want 0 after advancement", stored.EntriesSinceAdvance)
	}
}

func TestManualAdvanceStopsAtClose(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, "http://unused.invalid")
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	for i := 0; i < 4; i++ {
		if _, err := svc.Advance(context.Background(), userID, sess.ID); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}
	stored, _ := repo.FindByID(context.Background(), sess.ID)
	if stored.CurrentPhase != entities.PhaseClose {
		t.Fatalf("phase = %q, want close", stored.CurrentPhase)
	}
	if _, err := svc.Advance(context.Background(), userID, sess.ID); err == nil {
		t.Errorf("advanced past the terminal phase")
	}
}

func TestEndRejectsSecondEnd(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, "http://unused.invalid")
	userID := uuid.New()
	sess := startSession(t, svc, userID)

	ended, err := svc.End(context.Background(), userID, sess.ID)
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if ended.Status != entities.SessionStatusCompleted {
		t.Errorf("Status = %q, want completed", ended.Status)
	}
	if ended.EndedAt == nil {
		t.Errorf("EndedAt not set")
	}

	if _, err := svc.End(context.Background(), userID, sess.ID); err == nil {
		t.Errorf("second End accepted")
	}
	if _, err := svc.Respond(context.Background(), userID, sess.ID, TurnInput{Utterance: "hello?"}); err == nil {
		t.Errorf("turn accepted on an ended session")
	}
}

func TestOwnershipEnforced(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(t, repo, "http://unused.invalid")
	owner := uuid.New()
	stranger := uuid.New()
	sess := startSession(t, svc, owner)

	if _, err := svc.Get(context.Background(), stranger, sess.ID); err == nil {
		t.Errorf("stranger read another user's session")
	}
	if _, err := svc.End(context.Background(), stranger, sess.ID); err == nil {
		t.Errorf("stranger ended another user's session")
	}
}
