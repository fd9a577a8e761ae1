package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// ReportRepository implements the report repository interface using GORM
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Save upserts the report for a session. Regeneration overwrites the prior
// report row; the session_id unique index makes this a replace, not a patch.
func (r *ReportRepository) Save(ctx context.Context, report *entities.CoachReport) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(report).Error; err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// FindBySessionID finds the report for a session
func (r *ReportRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.CoachReport, error) {
	var report entities.CoachReport
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&report).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to find report: %w", err)
	}
	return &report, nil
}
