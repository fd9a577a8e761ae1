package engine

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/datatypes"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

// Phase-scoring constants.
const (
	phaseBaseScore = 50

	turnBonusMin      = 2  // trainee turns for the first activity bonus
	turnBonusMore     = 4  // trainee turns for the second activity bonus
	questionBonusCap  = 24 // max points from asked questions
	questionBonusStep = 6  // points per question mark

	longUtteranceAvg     = 260 // avg chars before the mild penalty
	veryLongUtteranceAvg = 400 // avg chars before the steep penalty

	listeningGapTurns = 3 // counterpart-over-trainee turn excess before penalty
)

// keywordBonus awards fixed points when any of its terms appears in the
// concatenated trainee text for a phase.
type keywordBonus struct {
	points int
	terms  []string
}

// phaseBonuses holds the fixed per-phase keyword bonus tables.
var phaseBonuses = map[entities.SessionPhase][]keywordBonus{
	entities.PhaseRapport: {
		{12, []string{"tell me about", "how long have you", "congratulations", "that's exciting"}},
		{6, []string{"glad", "great to meet", "appreciate you"}},
	},
	entities.PhaseMoneyQuestions: {
		{15, []string{"budget", "afford", "price range", "down payment"}},
		{12, []string{"credit", "pre-approv", "lender", "financing"}},
		{6, []string{"comfortable monthly", "monthly payment", "comfort range"}},
	},
	entities.PhaseDeepQuestions: {
		{14, []string{"why now", "what's driving", "most important", "deal breaker"}},
		{6, []string{"five years", "long term", "down the road"}},
	},
	entities.PhaseFrame: {
		{15, []string{"here's how i work", "my process", "what to expect", "game plan"}},
		{6, []string{"does that work for you", "make sense"}},
	},
	entities.PhaseClose: {
		{18, []string{"schedule a showing", "set up a time", "next step", "book a", "let's meet"}},
		{6, []string{"no pressure", "whenever you're ready", "take your time"}},
	},
}

// drillRecommendations is keyed by the worst-scoring phase.
var drillRecommendations = map[entities.SessionPhase]string{
	entities.PhaseRapport:        "Run the first-five-minutes drill: open three conversations with only personal questions, no property talk.",
	entities.PhaseMoneyQuestions: "Practice the budget conversation: ask about comfort range, pre-approval, and monthly payment in under two minutes.",
	entities.PhaseDeepQuestions:  "Drill motivation discovery: five consecutive open questions about why the client is moving now.",
	entities.PhaseFrame:          "Rehearse your process explanation until you can set expectations in ninety seconds.",
	entities.PhaseClose:          "Work the commitment close: end every practice call by proposing a concrete next step with a date.",
}

// phaseLabels for report prose.
var phaseLabels = map[entities.SessionPhase]string{
	entities.PhaseRapport:        "building rapport",
	entities.PhaseMoneyQuestions: "the money conversation",
	entities.PhaseDeepQuestions:  "discovery questioning",
	entities.PhaseFrame:          "framing your process",
	entities.PhaseClose:          "closing for commitment",
}

// ScoringEngine converts a finished transcript into a deterministic coach
// report. No external calls; identical input and configuration yield an
// identical report.
type ScoringEngine struct {
	compliance *ComplianceEngine
}

// NewScoringEngine builds a scorer over the given compliance engine.
func NewScoringEngine(compliance *ComplianceEngine) *ScoringEngine {
	return &ScoringEngine{compliance: compliance}
}

// Score produces the heuristic coach report for a transcript. The compliance
// gate uses only pattern-based violations.
func (s *ScoringEngine) Score(entries []entities.TranscriptEntry) *entities.CoachReport {
	byPhase := groupByPhase(entries)

	phaseScores := make(map[entities.SessionPhase]int, len(entities.PhaseOrder))
	for _, phase := range entities.PhaseOrder {
		phaseScores[phase] = s.scorePhase(phase, byPhase[phase])
	}

	total := 0
	for _, phase := range entities.PhaseOrder {
		total += phaseScores[phase]
	}
	overall := int(math.Round(float64(total) / float64(len(entities.PhaseOrder))))

	var flags []entities.ComplianceViolation
	for i, entry := range entries {
		if entry.Speaker != entities.SpeakerTrainee {
			continue
		}
		flags = append(flags, s.compliance.Scan(entry.Content, i)...)
	}
	pass := s.compliance.Pass(flags)

	grade := gradeFor(overall)
	if !pass {
		grade = applyComplianceGate(grade)
	}

	best, worst := bestAndWorst(phaseScores)

	return &entities.CoachReport{
		PhaseScores:     datatypes.NewJSONType(phaseScores),
		OverallScore:    overall,
		Grade:           grade,
		CompliancePass:  pass,
		ComplianceFlags: datatypes.NewJSONSlice(flags),
		Strengths: datatypes.NewJSONSlice([]string{
			fmt.Sprintf("Strongest stage: %s (%d/100).", phaseLabels[best], phaseScores[best]),
		}),
		Improvements: datatypes.NewJSONSlice([]string{
			fmt.Sprintf("Most room to grow: %s (%d/100).", phaseLabels[worst], phaseScores[worst]),
		}),
		NextDrill: drillRecommendations[worst],
		Source:    entities.ScoreSourceHeuristic,
	}
}

// scorePhase applies the fixed heuristic to the turns tagged with one phase.
func (s *ScoringEngine) scorePhase(phase entities.SessionPhase, turns []entities.TranscriptEntry) int {
	score := phaseBaseScore

	var traineeTurns, counterpartTurns int
	var traineeText strings.Builder
	var traineeChars int
	for _, t := range turns {
		switch t.Speaker {
		case entities.SpeakerTrainee:
			traineeTurns++
			traineeText.WriteString(strings.ToLower(t.Content))
			traineeText.WriteString(" ")
			traineeChars += len(t.Content)
		case entities.SpeakerCounterpart:
			counterpartTurns++
		}
	}
	text := traineeText.String()

	if traineeTurns >= turnBonusMin {
		score += 10
	}
	if traineeTurns >= turnBonusMore {
		score += 5
	}

	questions := strings.Count(text, "?")
	qBonus := questions * questionBonusStep
	if qBonus > questionBonusCap {
		qBonus = questionBonusCap
	}
	score += qBonus

	if traineeTurns > 0 {
		avg := traineeChars / traineeTurns
		if avg > veryLongUtteranceAvg {
			score -= 15
		} else if avg > longUtteranceAvg {
			score -= 10
		}
	}

	for _, bonus := range phaseBonuses[phase] {
		for _, term := range bonus.terms {
			if strings.Contains(text, term) {
				score += bonus.points
				break
			}
		}
	}

	if counterpartTurns-traineeTurns > listeningGapTurns {
		score -= 12
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// gradeFor maps an overall score to a letter grade.
func gradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// applyComplianceGate downgrades exactly one step on a failed gate. Grades at
// C and below are left alone so low performers are not penalized twice.
var complianceDowngrade = map[string]string{
	"A+": "B", "A": "B", "A-": "B",
	"B+": "C", "B": "C", "B-": "C",
}

func applyComplianceGate(grade string) string {
	if downgraded, ok := complianceDowngrade[grade]; ok {
		return downgraded
	}
	return grade
}

// bestAndWorst finds the max and min phase scores, breaking ties by the fixed
// phase order (first phase in the order wins both ties).
func bestAndWorst(scores map[entities.SessionPhase]int) (best, worst entities.SessionPhase) {
	best = entities.PhaseOrder[0]
	worst = entities.PhaseOrder[0]
	for _, phase := range entities.PhaseOrder[1:] {
		if scores[phase] > scores[best] {
			best = phase
		}
		if scores[phase] < scores[worst] {
			worst = phase
		}
	}
	return best, worst
}

// groupByPhase buckets entries by their phase tag. Untagged entries fall into
// the rapport bucket so early turns recorded before tagging still count.
func groupByPhase(entries []entities.TranscriptEntry) map[entities.SessionPhase][]entities.TranscriptEntry {
	byPhase := make(map[entities.SessionPhase][]entities.TranscriptEntry)
	for _, e := range entries {
		phase := e.Phase
		if !phase.Valid() {
			phase = entities.PhaseRapport
		}
		byPhase[phase] = append(byPhase[phase], e)
	}
	return byPhase
}
