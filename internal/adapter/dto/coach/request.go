package coach

// LiveTurnRequest is one utterance submitted by the live-coaching surface.
type LiveTurnRequest struct {
	Speaker string `json:"speaker" validate:"required,oneof=agent buyer"`
	Text    string `json:"text" validate:"required"`
	TS      int64  `json:"ts,omitempty"`
}

// LiveScoreRequest asks for an on-demand score over submitted turns.
type LiveScoreRequest struct {
	SessionKey string            `json:"sessionKey" validate:"required"`
	PhaseKey   string            `json:"phaseKey" validate:"required"`
	Turns      []LiveTurnRequest `json:"turns" validate:"required,min=1,dive"`
}
