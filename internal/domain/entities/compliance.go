package entities

import "time"

// ViolationSeverity tags how serious a compliance violation is.
type ViolationSeverity string

const (
	SeverityInfo     ViolationSeverity = "info"
	SeverityWarning  ViolationSeverity = "warning"
	SeverityCritical ViolationSeverity = "critical"
)

// ViolationCategory is the fixed policy taxonomy.
type ViolationCategory string

const (
	CategoryDisclosure  ViolationCategory = "disclosure"
	CategoryFairHousing ViolationCategory = "fair_housing"
	CategoryLicensing   ViolationCategory = "licensing"
	CategoryPromises    ViolationCategory = "promises"
	CategoryEthics      ViolationCategory = "ethics"
)

// ComplianceViolation is a detected instance of prohibited language in a
// trainee utterance. At most one violation is emitted per rule per scan.
type ComplianceViolation struct {
	RuleID          string            `json:"rule_id"`
	Severity        ViolationSeverity `json:"severity"`
	Category        ViolationCategory `json:"category"`
	Message         string            `json:"message"`
	Suggestion      string            `json:"suggestion"`
	TranscriptIndex int               `json:"transcript_index"`
	Timestamp       time.Time         `json:"timestamp"`
	Source          string            `json:"source,omitempty"` // "pattern" or "ai"
}
