package session

// BuyerProfileRequest configures the simulated buyer for a session.
// Personality is mandatory; unset traits fall back to safe defaults.
type BuyerProfileRequest struct {
	Personality      string `json:"personality" validate:"required,oneof=friendly cautious dominant distracted nervous skeptical"`
	ExperienceLevel  string `json:"experience_level,omitempty" validate:"omitempty,oneof=first_time move_up investor_lite"`
	EmotionalState   string `json:"emotional_state,omitempty"`
	FinancialComfort string `json:"financial_comfort,omitempty" validate:"omitempty,oneof=clear unclear embarrassed"`
	ResistanceLevel  string `json:"resistance_level,omitempty" validate:"omitempty,oneof=low medium high"`
	QuestionDepth    string `json:"question_depth,omitempty" validate:"omitempty,oneof=surface mixed advanced"`
}

// CreateSessionRequest starts a new training session.
type CreateSessionRequest struct {
	BuyerProfile BuyerProfileRequest `json:"buyer_profile" validate:"required"`
	WithVoice    bool                `json:"with_voice,omitempty"`
}

// RespondRequest submits one trainee turn.
type RespondRequest struct {
	UserMessage           string  `json:"user_message" validate:"required"`
	AgentSpeakingDuration float64 `json:"agent_speaking_duration,omitempty" validate:"omitempty,min=0"`
	SilenceDuration       float64 `json:"silence_duration,omitempty" validate:"omitempty,min=0"`
}

// ListSessionsRequest represents query parameters for listing sessions
type ListSessionsRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// IngestRecordingRequest submits a recorded call for transcription.
type IngestRecordingRequest struct {
	AudioURL string `json:"audio_url" validate:"required,url"`
}
