package engine

import (
	"strings"
	"time"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// complianceRule is one entry in the fixed policy rule set. Patterns are
// tested in order; the first match emits exactly one violation for the rule
// and stops checking its remaining patterns. Advisory rules are tracked but do
// not fail the compliance gate.
type complianceRule struct {
	ID         string
	Category   entities.ViolationCategory
	Severity   entities.ViolationSeverity
	Patterns   []string
	Message    string
	Suggestion string
	Advisory   bool
}

// complianceRules is the fixed rule table, grouped by category. Rules are
// independent: several rules may each fire on the same utterance.
var complianceRules = []complianceRule{
	// promises - guarantees of appreciation or return
	{
		ID:       "promises.appreciation",
		Category: entities.CategoryPromises,
		Severity: entities.SeverityCritical,
		Patterns: []string{
			"guaranteed to appreciate",
			"guaranteed to go up",
			"can only go up",
			"prices never go down",
		},
		Message:    "Guaranteeing property appreciation",
		Suggestion: "Speak to historical trends without promising future value.",
	},
	{
		ID:       "promises.return",
		Category: entities.CategoryPromises,
		Severity: entities.SeverityCritical,
		Patterns: []string{
			"guaranteed return",
			"can't lose money",
			"double your money",
			"risk-free investment",
		},
		Message:    "Guaranteeing an investment return",
		Suggestion: "Never promise returns; refer clients to their financial advisor.",
	},

	// fair_housing - steering and discriminatory language
	{
		ID:       "fair_housing.steering",
		Category: entities.CategoryFairHousing,
		Severity: entities.SeverityCritical,
		Patterns: []string{
			"people like you",
			"your kind of people",
			"that side of town is for",
			"you'd fit in better",
		},
		Message:    "Steering based on a protected class",
		Suggestion: "Describe properties by objective features only; let clients choose areas.",
	},
	{
		ID:       "fair_housing.demographics",
		Category: entities.CategoryFairHousing,
		Severity: entities.SeverityWarning,
		Patterns: []string{
			"neighborhood is changing",
			"good families",
			"the right kind of neighbors",
			"mostly young professionals live",
		},
		Message:    "Describing neighborhoods by who lives there",
		Suggestion: "Refer clients to public demographic sources instead of characterizing residents.",
	},

	// licensing - unlicensed legal or financial advice
	{
		ID:       "licensing.legal",
		Category: entities.CategoryLicensing,
		Severity: entities.SeverityWarning,
		Patterns: []string{
			"you don't need a lawyer",
			"i can give you legal advice",
			"you should sue",
			"skip the attorney",
		},
		Message:    "Giving legal advice without a license",
		Suggestion: "Recommend the client consult a real estate attorney.",
	},
	{
		ID:       "licensing.financial",
		Category: entities.CategoryLicensing,
		Severity: entities.SeverityInfo,
		Patterns: []string{
			"write it off on your taxes",
			"best way to structure your loan",
			"you'll definitely qualify",
		},
		Message:    "Giving tax or lending advice without a license",
		Suggestion: "Point the client to their lender or tax professional.",
	},

	// ethics - misrepresentation, concealment, dual agency
	{
		ID:       "ethics.concealment",
		Category: entities.CategoryEthics,
		Severity: entities.SeverityCritical,
		Patterns: []string{
			"don't mention the",
			"keep that between us",
			"they don't need to know",
			"just say you didn't know",
		},
		Message:    "Concealing or misrepresenting a material fact",
		Suggestion: "Material facts must be disclosed to all parties.",
	},
	{
		ID:       "ethics.dual_agency",
		Category: entities.CategoryEthics,
		Severity: entities.SeverityInfo,
		Patterns: []string{
			"i represent both sides",
			"i'm also the listing agent",
		},
		Message:    "Dual agency mentioned without disclosure language",
		Suggestion: "Dual agency requires informed written consent from both parties.",
	},

	// disclosure - advisory: tracked, does not fail the gate on its own
	{
		ID:       "disclosure.agency",
		Category: entities.CategoryDisclosure,
		Severity: entities.SeverityInfo,
		Patterns: []string{
			"we can skip the paperwork",
			"no need for the disclosure form",
			"sign that later",
		},
		Message:    "Agency-relationship disclosure appears to be skipped",
		Suggestion: "Present the agency disclosure before substantive discussion.",
		Advisory:   true,
	},
}

// ComplianceEngine scans trainee utterances against the fixed policy rule set.
// Scanning is pure and stateless; safe from any number of goroutines.
type ComplianceEngine struct {
	rules []complianceRule
}

// NewComplianceEngine builds an engine over the fixed rule table.
func NewComplianceEngine() *ComplianceEngine {
	return &ComplianceEngine{rules: complianceRules}
}

// Scan checks text against every rule and returns at most one violation per
// rule, in rule-table order. Scanning the same text twice yields an identical
// list apart from timestamps.
func (e *ComplianceEngine) Scan(text string, transcriptIndex int) []entities.ComplianceViolation {
	lower := strings.ToLower(text)
	now := time.Now()

	var violations []entities.ComplianceViolation
	for _, rule := range e.rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(lower, pattern) {
				violations = append(violations, entities.ComplianceViolation{
					RuleID:          rule.ID,
					Severity:        rule.Severity,
					Category:        rule.Category,
					Message:         rule.Message,
					Suggestion:      rule.Suggestion,
					TranscriptIndex: transcriptIndex,
					Timestamp:       now,
					Source:          "pattern",
				})
				break // one violation per rule per scan
			}
		}
	}
	return violations
}

// Pass reports the compliance gate outcome: true iff no non-advisory
// pattern-based violation was emitted. Externally supplied (AI) violations do
// not participate, to keep grading reproducible.
func (e *ComplianceEngine) Pass(violations []entities.ComplianceViolation) bool {
	advisory := make(map[string]bool, len(e.rules))
	for _, rule := range e.rules {
		if rule.Advisory {
			advisory[rule.ID] = true
		}
	}
	for _, v := range violations {
		if v.Source != "pattern" {
			continue
		}
		if !advisory[v.RuleID] {
			return false
		}
	}
	return true
}

// MergeExternal validates and merges violations produced by an AI-assisted
// pass with the pattern-based result. Malformed entries are dropped silently;
// the pattern list is never replaced.
func (e *ComplianceEngine) MergeExternal(pattern, external []entities.ComplianceViolation) []entities.ComplianceViolation {
	merged := make([]entities.ComplianceViolation, 0, len(pattern)+len(external))
	merged = append(merged, pattern...)
	for _, v := range external {
		if v.Category == "" || v.Severity == "" || v.Message == "" {
			continue
		}
		v.Source = "ai"
		merged = append(merged, v)
	}
	return merged
}
