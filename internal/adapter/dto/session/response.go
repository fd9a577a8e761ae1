package session

import (
	"time"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// SessionResponse represents a training session in responses
type SessionResponse struct {
	ID              string                 `json:"id"`
	BuyerProfile    entities.PersonaConfig `json:"buyer_profile"`
	CurrentPhase    string                 `json:"current_phase"`
	Status          string                 `json:"status"`
	VoiceRoomName   string                 `json:"voice_room_name,omitempty"`
	ArchiveURL      string                 `json:"archive_url,omitempty"`
	DurationSeconds int                    `json:"duration_seconds,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	EndedAt         *time.Time             `json:"ended_at,omitempty"`
}

// NewSessionResponse converts a session entity to its response shape.
func NewSessionResponse(s *entities.TrainingSession) *SessionResponse {
	return &SessionResponse{
		ID:              s.ID.String(),
		BuyerProfile:    s.Persona.Data(),
		CurrentPhase:    string(s.CurrentPhase),
		Status:          s.Status,
		VoiceRoomName:   s.VoiceRoomName,
		ArchiveURL:      s.ArchiveURL,
		DurationSeconds: s.DurationSeconds,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
	}
}

// CreateSessionResponse represents the response after starting a session
type CreateSessionResponse struct {
	Session    *SessionResponse `json:"session"`
	VoiceToken string           `json:"voice_token,omitempty"`
}

// TurnResponse is the buyer's side of one processed turn.
type TurnResponse struct {
	Response           string `json:"response"`
	Emotion            string `json:"emotion"`
	IsInterruption     bool   `json:"is_interruption"`
	InterruptionReason string `json:"interruption_reason,omitempty"`
	ShouldAdvancePhase bool   `json:"should_advance_phase"`
	NextPhase          string `json:"next_phase"`
}

// AdvanceResponse reports the phase after a manual advancement.
type AdvanceResponse struct {
	CurrentPhase string `json:"current_phase"`
}

// EndSessionResponse represents the response after ending a session
type EndSessionResponse struct {
	Session        *SessionResponse `json:"session"`
	AnalysisStatus string           `json:"analysis_status"`
	FeedbackURL    string           `json:"feedback_url"`
}

// TranscriptResponse is the ordered transcript of a session.
type TranscriptResponse struct {
	SessionID string                     `json:"session_id"`
	Entries   []entities.TranscriptEntry `json:"entries"`
}

// IngestRecordingResponse reports how many entries a recording produced.
type IngestRecordingResponse struct {
	EntriesAdded int `json:"entries_added"`
}
