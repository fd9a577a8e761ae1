package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session status constants.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// TrainingSession is one trainee/buyer roleplay conversation.
type TrainingSession struct {
	ID                  uuid.UUID                           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID              uuid.UUID                           `json:"user_id" gorm:"type:uuid;not null;index"`
	Persona             datatypes.JSONType[PersonaConfig]   `json:"persona" gorm:"type:jsonb"`
	CurrentPhase        SessionPhase                        `json:"current_phase" gorm:"type:varchar(30);default:'rapport'"`
	EntriesSinceAdvance int                                 `json:"entries_since_advance" gorm:"default:0"`
	Status              string                              `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Violations          datatypes.JSONSlice[ComplianceViolation] `json:"violations,omitempty" gorm:"type:jsonb"`
	VoiceRoomName       string                              `json:"voice_room_name,omitempty" gorm:"type:varchar(255)"`
	ArchiveURL          string                              `json:"archive_url,omitempty" gorm:"type:text"`
	DurationSeconds     int                                 `json:"duration_seconds,omitempty"`
	StartedAt           time.Time                           `json:"started_at" gorm:"autoCreateTime"`
	EndedAt             *time.Time                          `json:"ended_at,omitempty"`
	CreatedAt           time.Time                           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time                           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TrainingSession) TableName() string {
	return "training_sessions"
}

// NewTrainingSession creates an active session with the given persona.
func NewTrainingSession(userID uuid.UUID, persona PersonaConfig) *TrainingSession {
	return &TrainingSession{
		ID:           uuid.New(),
		UserID:       userID,
		Persona:      datatypes.NewJSONType(persona),
		CurrentPhase: PhaseRapport,
		Status:       SessionStatusActive,
		StartedAt:    time.Now(),
	}
}

// IsActive reports whether the session still accepts turns.
func (s *TrainingSession) IsActive() bool {
	return s != nil && s.Status == SessionStatusActive
}

// End marks the session completed with the reported duration.
func (s *TrainingSession) End(durationSeconds int) {
	now := time.Now()
	s.Status = SessionStatusCompleted
	s.EndedAt = &now
	s.DurationSeconds = durationSeconds
}
