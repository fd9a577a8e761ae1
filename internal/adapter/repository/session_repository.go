package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// SessionRepository implements the session repository interface using GORM
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create creates a new training session
func (r *SessionRepository) Create(ctx context.Context, session *entities.TrainingSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID finds a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.TrainingSession, error) {
	var session entities.TrainingSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session by ID: %w", err)
	}
	return &session, nil
}

// FindByUserID lists sessions for a user, newest first
func (r *SessionRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.TrainingSession, error) {
	var sessions []*entities.TrainingSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to find sessions by user ID: %w", err)
	}
	return sessions, nil
}

// Update updates a session
func (r *SessionRepository) Update(ctx context.Context, session *entities.TrainingSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// AppendEntry appends a transcript entry. Entries are append-only.
func (r *SessionRepository) AppendEntry(ctx context.Context, entry *entities.TranscriptEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}
	return nil
}

// Entries returns the full transcript in creation order
func (r *SessionRepository) Entries(ctx context.Context, sessionID uuid.UUID) ([]entities.TranscriptEntry, error) {
	var entries []entities.TranscriptEntry
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load transcript entries: %w", err)
	}
	return entries, nil
}

// AppendViolations merges new compliance violations into the session row
func (r *SessionRepository) AppendViolations(ctx context.Context, sessionID uuid.UUID, violations []entities.ComplianceViolation) error {
	if len(violations) == 0 {
		return nil
	}

	var session entities.TrainingSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return entities.ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session for violations: %w", err)
	}

	session.Violations = append(session.Violations, violations...)
	if err := r.db.WithContext(ctx).
		Model(&entities.TrainingSession{}).
		Where("id = ?", sessionID).
		Update("violations", session.Violations).Error; err != nil {
		return fmt.Errorf("failed to append violations: %w", err)
	}
	return nil
}
