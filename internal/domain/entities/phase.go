package entities

// SessionPhase is a named stage of the structured training conversation.
// Phases only move forward through the fixed order below; close is terminal.
type SessionPhase string

const (
	PhaseRapport        SessionPhase = "rapport"
	PhaseMoneyQuestions SessionPhase = "money_questions"
	PhaseDeepQuestions  SessionPhase = "deep_questions"
	PhaseFrame          SessionPhase = "frame"
	PhaseClose          SessionPhase = "close"
)

// PhaseOrder is the fixed conversation order. Tie-breaks in scoring also
// follow this order.
var PhaseOrder = []SessionPhase{
	PhaseRapport,
	PhaseMoneyQuestions,
	PhaseDeepQuestions,
	PhaseFrame,
	PhaseClose,
}

// Valid reports whether p is one of the known phases.
func (p SessionPhase) Valid() bool {
	for _, ph := range PhaseOrder {
		if p == ph {
			return true
		}
	}
	return false
}

// Index returns the position of p in PhaseOrder, or -1 for unknown phases.
func (p SessionPhase) Index() int {
	for i, ph := range PhaseOrder {
		if p == ph {
			return i
		}
	}
	return -1
}

// Next returns the phase following p. ok is false when p is terminal or
// unknown.
func (p SessionPhase) Next() (next SessionPhase, ok bool) {
	i := p.Index()
	if i < 0 || i >= len(PhaseOrder)-1 {
		return p, false
	}
	return PhaseOrder[i+1], true
}

// IsTerminal reports whether p is the close phase.
func (p SessionPhase) IsTerminal() bool {
	return p == PhaseClose
}
