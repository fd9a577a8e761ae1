package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// SessionRepository persists training sessions and their transcripts.
type SessionRepository interface {
	Create(ctx context.Context, session *entities.TrainingSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.TrainingSession, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.TrainingSession, error)
	Update(ctx context.Context, session *entities.TrainingSession) error
	AppendEntry(ctx context.Context, entry *entities.TranscriptEntry) error
	Entries(ctx context.Context, sessionID uuid.UUID) ([]entities.TranscriptEntry, error)
	AppendViolations(ctx context.Context, sessionID uuid.UUID, violations []entities.ComplianceViolation) error
}

// ReportRepository persists coach reports. Save replaces any previous report
// for the session; reports are recomputed wholesale, never patched.
type ReportRepository interface {
	Save(ctx context.Context, report *entities.CoachReport) error
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.CoachReport, error)
}
