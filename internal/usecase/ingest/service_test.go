package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.TrainingSession
	entries  map[uuid.UUID][]entities.TranscriptEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[uuid.UUID]*entities.TrainingSession),
		entries:  make(map[uuid.UUID][]entities.TranscriptEntry),
	}
}

func (r *fakeRepo) Create(_ context.Context, s *entities.TrainingSession) error {
	r.sessions[s.ID] = s
	return nil
}
func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.TrainingSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return s, nil
}
func (r *fakeRepo) FindByUserID(context.Context, uuid.UUID, int, int) ([]*entities.TrainingSession, error) {
	return nil, nil
}
func (r *fakeRepo) Update(context.Context, *entities.TrainingSession) error { return nil }
func (r *fakeRepo) AppendEntry(_ context.Context, e *entities.TranscriptEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.SessionID] = append(r.entries[e.SessionID], *e)
	return nil
}
func (r *fakeRepo) Entries(_ context.Context, id uuid.UUID) ([]entities.TranscriptEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.TranscriptEntry(nil), r.entries[id]...), nil
}
func (r *fakeRepo) AppendViolations(context.Context, uuid.UUID, []entities.ComplianceViolation) error {
	return nil
}

type stubTranscriber struct {
	utterances []Utterance
	err        error
	calls      int
}

func (s *stubTranscriber) Transcribe(context.Context, string) ([]Utterance, error) {
	s.calls++
	return s.utterances, s.err
}

func seedSession(repo *fakeRepo, userID uuid.UUID) *entities.TrainingSession {
	sess := entities.NewTrainingSession(userID, entities.PersonaConfig{Personality: entities.PersonalityCautious})
	repo.sessions[sess.ID] = sess
	return sess
}

func TestIngestMapsSpeakers(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	sess := seedSession(repo, userID)

	svc := NewService(repo, &stubTranscriber{utterances: []Utterance{
		{Speaker: "A", Text: "Hi folks, come on in."},
		{Speaker: "B", Text: "Thanks for having us."},
		{Speaker: "A", Text: "How was the drive over?"},
	}}, zap.NewNop())

	n, err := svc.Ingest(context.Background(), userID, sess.ID, "https://cdn.example.com/rec.mp3")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("appended %d entries, want 3", n)
	}

	entries, _ := repo.Entries(context.Background(), sess.ID)
	want := []entities.Speaker{entities.SpeakerTrainee, entities.SpeakerCounterpart, entities.SpeakerTrainee}
	for i, w := range want {
		if entries[i].Speaker != w {
			t.Errorf("entry %d speaker = %q, want %q", i, entries[i].Speaker, w)
		}
		if entries[i].Seq != i {
			t.Errorf("entry %d seq = %d", i, entries[i].Seq)
		}
		if entries[i].Phase != sess.CurrentPhase {
			t.Errorf("entry %d phase = %q", i, entries[i].Phase)
		}
	}
}

func TestIngestRejectsCrossUser(t *testing.T) {
	repo := newFakeRepo()
	sess := seedSession(repo, uuid.New())
	svc := NewService(repo, &stubTranscriber{}, zap.NewNop())

	_, err := svc.Ingest(context.Background(), uuid.New(), sess.ID, "https://cdn.example.com/rec.mp3")
	if err == nil {
		t.Fatalf("cross-user ingest accepted")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SESSION_ACCESS_DENIED {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIngestRequiresAudioURL(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	sess := seedSession(repo, userID)
	svc := NewService(repo, &stubTranscriber{}, zap.NewNop())

	if _, err := svc.Ingest(context.Background(), userID, sess.ID, "  "); err == nil {
		t.Fatalf("blank audio URL accepted")
	}
}

func TestIngestEmptyRecording(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	sess := seedSession(repo, userID)
	svc := NewService(repo, &stubTranscriber{utterances: nil}, zap.NewNop())

	if _, err := svc.Ingest(context.Background(), userID, sess.ID, "https://cdn.example.com/rec.mp3"); err == nil {
		t.Fatalf("silent recording accepted")
	}
}
