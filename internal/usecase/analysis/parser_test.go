package analysis

import (
	"testing"
)

func TestParsePlainJSON(t *testing.T) {
	p := NewParser()

	fb, err := p.Parse(`{"skill_grades":{"rapport":"A-"},"summary":"Good work."}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fb.SkillGrades["rapport"] != "A-" {
		t.Errorf("SkillGrades = %+v", fb.SkillGrades)
	}
	if fb.Summary != "Good work." {
		t.Errorf("Summary = %q", fb.Summary)
	}
}

func TestParseFencedJSON(t *testing.T) {
	p := NewParser()

	raw := "Here is the analysis:\n```json\n{\"skill_grades\":{\"closing\":\"c+\"}}\n```\nHope that helps!"
	fb, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fb.SkillGrades["closing"] != "C+" {
		t.Errorf("grade not normalized: %q", fb.SkillGrades["closing"])
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	p := NewParser()

	cases := []struct {
		name string
		raw  string
	}{
		{"no JSON", "The agent did a fine job overall."},
		{"broken JSON", `{"skill_grades":{"rapport":`},
		{"missing grades", `{"summary":"nice"}`},
		{"invalid grade", `{"skill_grades":{"rapport":"S"}}`},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Parse(tc.raw); err == nil {
				t.Errorf("Parse accepted %q", tc.raw)
			}
		})
	}
}
