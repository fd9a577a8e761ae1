package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pitchlabs/salescoach/internal/infrastructure/http/middleware"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
	"github.com/pitchlabs/salescoach/internal/usecase/livecoach"
	pkgvalidator "github.com/pitchlabs/salescoach/pkg/validator"
)

func newLiveScoreContext(t *testing.T, body string, authed bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/live/score", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		c.Set(middleware.UserIDKey, uuid.New())
	}
	return c, rec
}

func newLiveCoachHandler() *LiveCoach {
	checker := engine.NewComplianceEngine()
	scorer := engine.NewScoringEngine(checker)
	return NewLiveCoachHandler(livecoach.NewService(scorer, zap.NewNop()), zap.NewNop())
}

func TestLiveScoreContract(t *testing.T) {
	body := `{
		"sessionKey": "demo-1",
		"phaseKey": "money_questions",
		"turns": [
			{"speaker": "agent", "text": "What budget range feels comfortable for you?", "ts": 1},
			{"speaker": "buyer", "text": "Somewhere around four hundred thousand.", "ts": 2},
			{"speaker": "agent", "text": "Have you spoken with a lender about pre-approval?", "ts": 3},
			{"speaker": "buyer", "text": "Not yet, we wanted to look first.", "ts": 4}
		]
	}`
	c, rec := newLiveScoreContext(t, body, true)

	if err := newLiveCoachHandler().Score(c); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	for _, key := range []string{
		"overall_score", "skill_grade", "phase_scores",
		"compliance", "strengths", "improvements", "next_drill",
	} {
		if _, ok := payload[key]; !ok {
			t.Errorf("response missing key %q", key)
		}
	}

	var compliance struct {
		Pass  bool              `json:"pass"`
		Flags []json.RawMessage `json:"flags"`
	}
	if err := json.Unmarshal(payload["compliance"], &compliance); err != nil {
		t.Fatalf("unmarshal compliance: %v", err)
	}
	if !compliance.Pass {
		t.Errorf("compliance.pass = false for a clean transcript")
	}
	if compliance.Flags == nil {
		t.Errorf("compliance.flags should be an empty array, not null")
	}
}

func TestLiveScoreRejectsUnknownPhase(t *testing.T) {
	body := `{"sessionKey": "demo-1", "phaseKey": "warmup", "turns": [{"speaker": "agent", "text": "hi"}]}`
	c, rec := newLiveScoreContext(t, body, true)

	if err := newLiveCoachHandler().Score(c); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLiveScoreRequiresAuth(t *testing.T) {
	body := `{"sessionKey": "demo-1", "phaseKey": "rapport", "turns": [{"speaker": "agent", "text": "hi"}]}`
	c, rec := newLiveScoreContext(t, body, false)

	if err := newLiveCoachHandler().Score(c); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
