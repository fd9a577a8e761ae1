package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

var validGrades = map[string]bool{
	"A+": true, "A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true, "C-": true,
	"D+": true, "D": true, "D-": true,
	"F": true,
}

// Parser turns raw LLM output into validated SessionFeedback. Models wrap
// JSON in markdown fences or prose often enough that the raw body is never
// unmarshalled directly.
type Parser struct{}

// NewParser constructs a feedback parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts and validates the feedback JSON from raw model output.
func (p *Parser) Parse(raw string) (*entities.SessionFeedback, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var feedback entities.SessionFeedback
	if err := json.Unmarshal([]byte(body), &feedback); err != nil {
		return nil, fmt.Errorf("malformed feedback JSON: %w", err)
	}

	if len(feedback.SkillGrades) == 0 {
		return nil, fmt.Errorf("feedback missing skill grades")
	}
	for skill, grade := range feedback.SkillGrades {
		normalized := strings.ToUpper(strings.TrimSpace(grade))
		if !validGrades[normalized] {
			return nil, fmt.Errorf("invalid grade %q for skill %q", grade, skill)
		}
		feedback.SkillGrades[skill] = normalized
	}
	return &feedback, nil
}

// extractJSON locates the JSON object inside raw output, tolerating markdown
// code fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return s[start : end+1], nil
}
