package entities

import "fmt"

// Personality constants for the simulated buyer.
const (
	PersonalityFriendly   = "friendly"
	PersonalityCautious   = "cautious"
	PersonalityDominant   = "dominant"
	PersonalityDistracted = "distracted"
	PersonalityNervous    = "nervous"
	PersonalitySkeptical  = "skeptical"
)

// Experience level constants.
const (
	ExperienceFirstTime    = "first_time"
	ExperienceMoveUp       = "move_up"
	ExperienceInvestorLite = "investor_lite"
)

// Emotional state constants.
const (
	EmotionalStateExcited = "excited"
	EmotionalStateRushed  = "rushed"
)

// Financial comfort constants.
const (
	FinancialComfortClear       = "clear"
	FinancialComfortUnclear     = "unclear"
	FinancialComfortEmbarrassed = "embarrassed"
)

// Resistance level constants.
const (
	ResistanceLow    = "low"
	ResistanceMedium = "medium"
	ResistanceHigh   = "high"
)

// Question depth constants.
const (
	QuestionDepthSurface  = "surface"
	QuestionDepthMixed    = "mixed"
	QuestionDepthAdvanced = "advanced"
)

// PersonaConfig is the fixed behavioral configuration of the simulated buyer
// for one session. Set once at session start and never mutated mid-session.
type PersonaConfig struct {
	ExperienceLevel  string `json:"experience_level"`
	EmotionalState   string `json:"emotional_state"`
	FinancialComfort string `json:"financial_comfort"`
	ResistanceLevel  string `json:"resistance_level"`
	QuestionDepth    string `json:"question_depth"`
	Personality      string `json:"personality"`
}

var knownPersonalities = map[string]bool{
	PersonalityFriendly:   true,
	PersonalityCautious:   true,
	PersonalityDominant:   true,
	PersonalityDistracted: true,
	PersonalityNervous:    true,
	PersonalitySkeptical:  true,
}

// Validate checks the persona configuration. Personality is the only field the
// behavior model refuses to guess; the other fields get safe defaults.
func (p *PersonaConfig) Validate() error {
	if p.Personality == "" {
		return fmt.Errorf("personality is required")
	}
	if !knownPersonalities[p.Personality] {
		return fmt.Errorf("unknown personality %q", p.Personality)
	}
	if p.ExperienceLevel == "" {
		p.ExperienceLevel = ExperienceFirstTime
	}
	if p.EmotionalState == "" {
		p.EmotionalState = EmotionalStateExcited
	}
	if p.FinancialComfort == "" {
		p.FinancialComfort = FinancialComfortUnclear
	}
	if p.ResistanceLevel == "" {
		p.ResistanceLevel = ResistanceMedium
	}
	if p.QuestionDepth == "" {
		p.QuestionDepth = QuestionDepthMixed
	}
	return nil
}
