package entities

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerTrainee     Speaker = "trainee"
	SpeakerCounterpart Speaker = "counterpart"
)

// TranscriptEntry is one utterance in a session transcript. Entries are
// append-only; ordering is creation order (Seq), never rewritten.
type TranscriptEntry struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID uuid.UUID    `json:"session_id" gorm:"type:uuid;not null;index"`
	Seq       int          `json:"seq" gorm:"not null;index"`
	Speaker   Speaker      `json:"speaker" gorm:"type:varchar(20);not null"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	Phase     SessionPhase `json:"phase,omitempty" gorm:"type:varchar(30)"`
	CreatedAt time.Time    `json:"timestamp" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptEntry) TableName() string {
	return "transcript_entries"
}

// NewTranscriptEntry creates an entry to append to a session transcript.
func NewTranscriptEntry(sessionID uuid.UUID, seq int, speaker Speaker, content string, phase SessionPhase) *TranscriptEntry {
	return &TranscriptEntry{
		ID:        uuid.New(),
		SessionID: sessionID,
		Seq:       seq,
		Speaker:   speaker,
		Content:   content,
		Phase:     phase,
		CreatedAt: time.Now(),
	}
}
