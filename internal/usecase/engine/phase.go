package engine

import (
	"strings"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// minEntriesPerPhase is how many transcript entries must accumulate since the
// last advancement before the controller will consider moving on.
const minEntriesPerPhase = 4

// phaseIndicators maps each phase to the completion phrases that signal the
// conversation is ready to move past it. Matching is case-insensitive
// substring, first match wins.
var phaseIndicators = map[entities.SessionPhase][]string{
	entities.PhaseRapport: {
		"nice to meet",
		"looking forward",
		"great to connect",
		"tell me about yourselves",
		"glad we could talk",
	},
	entities.PhaseMoneyQuestions: {
		"budget",
		"monthly payment",
		"pre-approved",
		"price range",
		"down payment",
	},
	entities.PhaseDeepQuestions: {
		"must-have",
		"deal breaker",
		"most important to you",
		"in five years",
		"what matters most",
	},
	entities.PhaseFrame: {
		"here's how i work",
		"my process",
		"what to expect",
		"how this works",
		"game plan",
	},
}

// AdvanceDecision is the outcome of a phase-advancement check.
type AdvanceDecision struct {
	ShouldAdvance bool
	NextPhase     entities.SessionPhase
}

// PhaseController decides when the structured conversation moves to its next
// stage. Phases only move forward; close is terminal.
type PhaseController struct {
	minEntries int
	indicators map[entities.SessionPhase][]string
}

// NewPhaseController builds a controller with the fixed indicator tables.
func NewPhaseController() *PhaseController {
	return &PhaseController{
		minEntries: minEntriesPerPhase,
		indicators: phaseIndicators,
	}
}

// Advance decides whether the session should leave current. entriesSinceAdvance
// counts transcript entries appended since the session started or since the
// last advancement; recentText is the most recent utterance from either side.
func (pc *PhaseController) Advance(current entities.SessionPhase, entriesSinceAdvance int, recentText string) AdvanceDecision {
	if current.IsTerminal() {
		return AdvanceDecision{}
	}
	if entriesSinceAdvance < pc.minEntries {
		return AdvanceDecision{}
	}

	lower := strings.ToLower(recentText)
	matched := false
	for _, phrase := range pc.indicators[current] {
		if strings.Contains(lower, phrase) {
			matched = true
			break
		}
	}
	if !matched {
		return AdvanceDecision{}
	}

	next, ok := current.Next()
	if !ok {
		return AdvanceDecision{}
	}
	return AdvanceDecision{ShouldAdvance: true, NextPhase: next}
}

// ManualAdvance honors an explicit advance request from the application. It
// bypasses the phrase and minimum-entry checks but never leaves close.
func (pc *PhaseController) ManualAdvance(current entities.SessionPhase) AdvanceDecision {
	if current.IsTerminal() {
		return AdvanceDecision{}
	}
	next, ok := current.Next()
	if !ok {
		return AdvanceDecision{}
	}
	return AdvanceDecision{ShouldAdvance: true, NextPhase: next}
}
