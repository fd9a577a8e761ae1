package engine

import (
	"strings"
	"testing"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

func entry(phase entities.SessionPhase, speaker entities.Speaker, content string) entities.TranscriptEntry {
	return entities.TranscriptEntry{Speaker: speaker, Content: content, Phase: phase}
}

func TestScoreEmptyTranscript(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	report := s.Score(nil)
	if report.OverallScore != 50 {
		t.Errorf("OverallScore = %d, want the base 50", report.OverallScore)
	}
	if report.Grade != "F" {
		t.Errorf("Grade = %q, want F", report.Grade)
	}
	if !report.CompliancePass {
		t.Errorf("empty transcript failed compliance")
	}
	if report.Source != entities.ScoreSourceHeuristic {
		t.Errorf("Source = %q, want %q", report.Source, entities.ScoreSourceHeuristic)
	}
	// All phases tie at 50; both best and worst resolve to the first phase.
	if report.NextDrill != drillRecommendations[entities.PhaseRapport] {
		t.Errorf("NextDrill = %q, want the rapport drill on an all-tie", report.NextDrill)
	}
}

func TestScorePhaseKeywordBonusesAndClamp(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	turns := []entities.TranscriptEntry{
		entry(entities.PhaseMoneyQuestions, entities.SpeakerTrainee, "What's your overall budget looking like?"),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerCounterpart, "Somewhere around four fifty."),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerTrainee, "Have you talked to a lender about pre-approval yet?"),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerCounterpart, "Not yet, honestly."),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerTrainee, "What monthly payment would feel comfortable?"),
	}

	// 50 base + 10 activity + 18 for three questions + 15 budget + 12
	// financing + 6 payment-comfort = 111, clamped to 100.
	got := s.scorePhase(entities.PhaseMoneyQuestions, turns)
	if got != 100 {
		t.Errorf("scorePhase = %d, want 100 after clamping", got)
	}
}

func TestScorePhaseLengthPenalty(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	monologue := strings.Repeat("let me walk you through every detail of the market ", 9)
	if len(monologue) <= veryLongUtteranceAvg {
		t.Fatalf("test fixture too short: %d chars", len(monologue))
	}
	turns := []entities.TranscriptEntry{
		entry(entities.PhaseFrame, entities.SpeakerTrainee, monologue),
	}
	// 50 base, one turn so no activity bonus, no questions, no frame
	// keywords, minus 15 for the very long average.
	if got := s.scorePhase(entities.PhaseFrame, turns); got != 35 {
		t.Errorf("scorePhase = %d, want 35", got)
	}
}

func TestScorePhaseListeningGapPenalty(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	turns := []entities.TranscriptEntry{
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "So we just moved here."),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "The schools were the draw."),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "And my office is downtown."),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "We've been renting so far."),
	}
	// 50 base minus 12 for four counterpart turns with none from the trainee.
	if got := s.scorePhase(entities.PhaseRapport, turns); got != 38 {
		t.Errorf("scorePhase = %d, want 38", got)
	}
}

func TestScoreEndToEnd(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	entries := []entities.TranscriptEntry{
		entry(entities.PhaseRapport, entities.SpeakerTrainee, "So glad we could sit down. Tell me about what brought you to the area?"),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "We relocated for work last spring."),
		entry(entities.PhaseRapport, entities.SpeakerTrainee, "How long have you been renting here?"),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "Almost two years now."),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerTrainee, "What's your budget looking like?"),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerCounterpart, "We're thinking somewhere under five hundred."),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerTrainee, "Have you talked to a lender about pre-approval, and what monthly payment feels comfortable?"),
		entry(entities.PhaseMoneyQuestions, entities.SpeakerCounterpart, "We're pre-approved up to four eighty."),
		entry(entities.PhaseDeepQuestions, entities.SpeakerTrainee, "What's most important to you in the next place?"),
		entry(entities.PhaseDeepQuestions, entities.SpeakerCounterpart, "A real yard. And a short commute."),
		entry(entities.PhaseDeepQuestions, entities.SpeakerTrainee, "Where do you see yourselves in five years? Any deal breaker I should know about?"),
		entry(entities.PhaseDeepQuestions, entities.SpeakerCounterpart, "Probably still here, maybe with a second kid."),
		entry(entities.PhaseFrame, entities.SpeakerTrainee, "Here's how I work: I line up showings weekly and you never sign anything you haven't slept on."),
		entry(entities.PhaseFrame, entities.SpeakerCounterpart, "That sounds reasonable."),
		entry(entities.PhaseFrame, entities.SpeakerTrainee, "Does that work for you as a starting point?"),
		entry(entities.PhaseFrame, entities.SpeakerCounterpart, "It does."),
		entry(entities.PhaseClose, entities.SpeakerTrainee, "Could we schedule a showing for Saturday morning?"),
		entry(entities.PhaseClose, entities.SpeakerCounterpart, "Saturday works for us."),
		entry(entities.PhaseClose, entities.SpeakerTrainee, "No pressure, we can start with just two houses."),
		entry(entities.PhaseClose, entities.SpeakerCounterpart, "Perfect, see you then."),
	}

	report := s.Score(entries)

	if !report.CompliancePass {
		t.Errorf("clean transcript failed compliance: %+v", report.ComplianceFlags)
	}
	scores := report.PhaseScores.Data()
	if scores[entities.PhaseMoneyQuestions] < 75 {
		t.Errorf("money phase = %d, want at least 75 with budget and payment language", scores[entities.PhaseMoneyQuestions])
	}
	if report.OverallScore < 80 {
		t.Errorf("OverallScore = %d, want at least 80 for a clean structured session", report.OverallScore)
	}
	if report.Grade != "A" && report.Grade != "B" {
		t.Errorf("Grade = %q, want A or B", report.Grade)
	}
	if report.NextDrill == "" {
		t.Errorf("missing drill recommendation")
	}
	worst := entities.PhaseOrder[0]
	for _, p := range entities.PhaseOrder[1:] {
		if scores[p] < scores[worst] {
			worst = p
		}
	}
	if report.NextDrill != drillRecommendations[worst] {
		t.Errorf("NextDrill = %q, not keyed to the worst phase %q", report.NextDrill, worst)
	}
	if len(report.Strengths) == 0 || len(report.Improvements) == 0 {
		t.Errorf("expected non-empty strengths and improvements")
	}
}

func TestScoreRecordsViolationsAndFailsGate(t *testing.T) {
	s := NewScoringEngine(NewComplianceEngine())

	entries := []entities.TranscriptEntry{
		entry(entities.PhaseRapport, entities.SpeakerTrainee, "This one is guaranteed to appreciate, trust me."),
		entry(entities.PhaseRapport, entities.SpeakerCounterpart, "If you say so."),
	}

	report := s.Score(entries)
	if report.CompliancePass {
		t.Errorf("critical violation passed the gate")
	}
	if len(report.ComplianceFlags) != 1 || report.ComplianceFlags[0].RuleID != "promises.appreciation" {
		t.Errorf("ComplianceFlags = %+v, want the appreciation promise flagged", report.ComplianceFlags)
	}
	if report.ComplianceFlags[0].TranscriptIndex != 0 {
		t.Errorf("TranscriptIndex = %d, want 0", report.ComplianceFlags[0].TranscriptIndex)
	}
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"}, {90, "A"}, {89, "B"}, {80, "B"},
		{79, "C"}, {70, "C"}, {69, "D"}, {60, "D"}, {59, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.score); got != tt.want {
			t.Errorf("gradeFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestComplianceGateDowngradesOneStep(t *testing.T) {
	tests := []struct{ in, want string }{
		{"A+", "B"}, {"A", "B"}, {"A-", "B"},
		{"B+", "C"}, {"B", "C"}, {"B-", "C"},
		{"C", "C"}, {"D", "D"}, {"F", "F"},
	}
	for _, tt := range tests {
		if got := applyComplianceGate(tt.in); got != tt.want {
			t.Errorf("applyComplianceGate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUntaggedEntriesCountTowardRapport(t *testing.T) {
	byPhase := groupByPhase([]entities.TranscriptEntry{
		{Speaker: entities.SpeakerTrainee, Content: "Hello there, nice to meet you."},
	})
	if len(byPhase[entities.PhaseRapport]) != 1 {
		t.Errorf("untagged entry not bucketed into rapport")
	}
}
