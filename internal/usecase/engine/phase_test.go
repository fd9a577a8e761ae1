package engine

import (
	"testing"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
)

func TestAdvanceRequiresMinimumEntries(t *testing.T) {
	pc := NewPhaseController()

	d := pc.Advance(entities.PhaseRapport, 3, "it was so nice to meet you both")
	if d.ShouldAdvance {
		t.Errorf("advanced with only 3 entries since last advancement")
	}

	d = pc.Advance(entities.PhaseRapport, 4, "it was so nice to meet you both")
	if !d.ShouldAdvance {
		t.Fatalf("expected advancement with 4 entries and a matching phrase")
	}
	if d.NextPhase != entities.PhaseMoneyQuestions {
		t.Errorf("NextPhase = %q, want %q", d.NextPhase, entities.PhaseMoneyQuestions)
	}
}

func TestAdvanceRequiresIndicatorPhrase(t *testing.T) {
	pc := NewPhaseController()

	d := pc.Advance(entities.PhaseRapport, 10, "so what neighborhoods are you thinking about")
	if d.ShouldAdvance {
		t.Errorf("advanced without any completion phrase for rapport")
	}
}

func TestAdvanceMatchingIsCaseInsensitive(t *testing.T) {
	pc := NewPhaseController()

	d := pc.Advance(entities.PhaseMoneyQuestions, 6, "We talked about our BUDGET already")
	if !d.ShouldAdvance {
		t.Fatalf("expected case-insensitive phrase match to advance")
	}
	if d.NextPhase != entities.PhaseDeepQuestions {
		t.Errorf("NextPhase = %q, want %q", d.NextPhase, entities.PhaseDeepQuestions)
	}
}

func TestAdvanceNeverSkipsPhases(t *testing.T) {
	pc := NewPhaseController()

	// A close-phase indicator spoken during rapport must not jump ahead.
	d := pc.Advance(entities.PhaseRapport, 8, "nice to meet you, here's my game plan")
	if !d.ShouldAdvance {
		t.Fatalf("expected advancement")
	}
	if d.NextPhase != entities.PhaseMoneyQuestions {
		t.Errorf("NextPhase = %q, want the immediately following phase", d.NextPhase)
	}
}

func TestAdvanceFromCloseNeverHappens(t *testing.T) {
	pc := NewPhaseController()

	if d := pc.Advance(entities.PhaseClose, 100, "game plan budget nice to meet"); d.ShouldAdvance {
		t.Errorf("advanced out of the terminal phase")
	}
	if d := pc.ManualAdvance(entities.PhaseClose); d.ShouldAdvance {
		t.Errorf("manual advance left the terminal phase")
	}
}

func TestManualAdvanceBypassesChecks(t *testing.T) {
	pc := NewPhaseController()

	current := entities.PhaseRapport
	for i, want := range entities.PhaseOrder[1:] {
		d := pc.ManualAdvance(current)
		if !d.ShouldAdvance {
			t.Fatalf("step %d: manual advance from %q refused", i, current)
		}
		if d.NextPhase != want {
			t.Fatalf("step %d: NextPhase = %q, want %q", i, d.NextPhase, want)
		}
		current = d.NextPhase
	}
}

func TestPhaseOrderIsMonotonic(t *testing.T) {
	for i, phase := range entities.PhaseOrder {
		if phase.Index() != i {
			t.Errorf("Index(%q) = %d, want %d", phase, phase.Index(), i)
		}
		next, ok := phase.Next()
		if i == len(entities.PhaseOrder)-1 {
			if ok {
				t.Errorf("terminal phase %q reported a successor %q", phase, next)
			}
			continue
		}
		if !ok || next != entities.PhaseOrder[i+1] {
			t.Errorf("Next(%q) = %q, %v; want %q", phase, next, ok, entities.PhaseOrder[i+1])
		}
	}
}
