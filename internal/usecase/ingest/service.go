package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/domain/repositories"
)

// Utterance is one diarized segment of a transcribed recording.
type Utterance struct {
	Speaker string
	Text    string
}

// Transcriber converts a recording URL into ordered, speaker-labeled
// utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) ([]Utterance, error)
}

// assemblyTranscriber backs Transcriber with the AssemblyAI SDK.
type assemblyTranscriber struct {
	client *aai.Client
}

// NewAssemblyTranscriber wraps the official SDK client.
func NewAssemblyTranscriber(apiKey string) Transcriber {
	return &assemblyTranscriber{client: aai.NewClient(apiKey)}
}

func (t *assemblyTranscriber) Transcribe(ctx context.Context, audioURL string) ([]Utterance, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	var out []Utterance
	for _, u := range transcript.Utterances {
		if u.Text == nil || strings.TrimSpace(*u.Text) == "" {
			continue
		}
		speaker := ""
		if u.Speaker != nil {
			speaker = *u.Speaker
		}
		out = append(out, Utterance{Speaker: speaker, Text: strings.TrimSpace(*u.Text)})
	}
	return out, nil
}

// Service ingests recorded roleplay audio: the recording is transcribed and
// its utterances appended to the session transcript, so voice sessions reach
// the same scoring path as text sessions.
type Service struct {
	sessions    repositories.SessionRepository
	transcriber Transcriber
	logger      *zap.Logger
}

// NewService constructs the ingest service.
func NewService(sessions repositories.SessionRepository, transcriber Transcriber, logger *zap.Logger) *Service {
	return &Service{
		sessions:    sessions,
		transcriber: transcriber,
		logger:      logger,
	}
}

// Ingest transcribes the recording at audioURL and appends the result to the
// session transcript. The first diarized speaker is taken to be the trainee.
// Returns the number of entries appended.
func (s *Service) Ingest(ctx context.Context, userID, sessionID uuid.UUID, audioURL string) (int, error) {
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return 0, apperrors.ErrInvalidArgument("audio_url is required")
	}

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return 0, apperrors.ErrSessionNotFound(sessionID.String())
		}
		return 0, apperrors.ErrDBQueryFailed("find session", err)
	}
	if sess.UserID != userID {
		return 0, apperrors.ErrSessionAccessDenied(sessionID.String())
	}
	if !sess.IsActive() {
		return 0, apperrors.ErrSessionEnded(sessionID.String())
	}

	var utterances []Utterance
	submit := func() error {
		u, err := s.transcriber.Transcribe(ctx, audioURL)
		if err != nil {
			return err
		}
		utterances = u
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(submit, backoff.WithContext(bo, ctx)); err != nil {
		s.logger.Error("recording transcription failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return 0, apperrors.ErrAITranscriptionFailed(err)
	}
	if len(utterances) == 0 {
		return 0, apperrors.ErrInvalidArgument("recording produced no speech")
	}

	existing, err := s.sessions.Entries(ctx, sessionID)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("load transcript", err)
	}

	traineeLabel := utterances[0].Speaker
	seq := len(existing)
	appended := 0
	for _, u := range utterances {
		speaker := entities.SpeakerCounterpart
		if u.Speaker == traineeLabel {
			speaker = entities.SpeakerTrainee
		}
		entry := entities.NewTranscriptEntry(sessionID, seq+appended, speaker, u.Text, sess.CurrentPhase)
		if err := s.sessions.AppendEntry(ctx, entry); err != nil {
			return appended, apperrors.ErrDBQueryFailed("append entry", err)
		}
		appended++
	}

	s.logger.Info("recording ingested",
		zap.String("session_id", sessionID.String()),
		zap.Int("utterances", appended),
	)
	return appended, nil
}
