package livecoach

import (
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
)

// Turn is one utterance submitted by the live-coaching surface.
type Turn struct {
	Speaker string // "agent" or "buyer"
	Text    string
	TS      int64
}

// Service scores submitted turns on demand. Stateless: nothing is persisted
// and identical input yields an identical report.
type Service struct {
	scorer *engine.ScoringEngine
	logger *zap.Logger
}

// NewService constructs the live-coach scorer.
func NewService(scorer *engine.ScoringEngine, logger *zap.Logger) *Service {
	return &Service{scorer: scorer, logger: logger}
}

// Score grades the submitted turns as a transcript slice tagged with the
// given phase.
func (s *Service) Score(sessionKey string, phase entities.SessionPhase, turns []Turn) (*entities.CoachReport, error) {
	if !phase.Valid() {
		return nil, apperrors.ErrInvalidArgument("unknown phase")
	}
	if len(turns) == 0 {
		return nil, apperrors.ErrInvalidArgument("turns are required")
	}

	entries := make([]entities.TranscriptEntry, 0, len(turns))
	for _, t := range turns {
		var speaker entities.Speaker
		switch t.Speaker {
		case "agent":
			speaker = entities.SpeakerTrainee
		case "buyer":
			speaker = entities.SpeakerCounterpart
		default:
			return nil, apperrors.ErrInvalidArgument("speaker must be agent or buyer")
		}
		entries = append(entries, entities.TranscriptEntry{
			Speaker: speaker,
			Content: t.Text,
			Phase:   phase,
		})
	}

	report := s.scorer.Score(entries)
	s.logger.Debug("live score computed",
		zap.String("session_key", sessionKey),
		zap.String("phase", string(phase)),
		zap.Int("overall", report.OverallScore),
	)
	return report, nil
}
