package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	coachdto "github.com/pitchlabs/salescoach/internal/adapter/dto/coach"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/usecase/analysis"
	sessionUsecase "github.com/pitchlabs/salescoach/internal/usecase/session"
)

// Analysis handles coach-report HTTP requests
type Analysis struct {
	sessions     *sessionUsecase.Service
	orchestrator *analysis.Orchestrator
	logger       *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(sessions *sessionUsecase.Service, orchestrator *analysis.Orchestrator, logger *zap.Logger) *Analysis {
	return &Analysis{
		sessions:     sessions,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Report handles GET /v1/sessions/:id/report
// @Summary      Get the coach report for a session
// @Description  Returns the stored report, or just the analysis status while scoring runs
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  coach.ReportResponse
// @Router       /sessions/{id}/report [get]
func (h *Analysis) Report(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// Ownership check before touching the report store.
	if _, err := h.sessions.Get(c.Request().Context(), userID, sessionID); err != nil {
		return HandleError(h.logger, c, err)
	}

	report, status, err := h.orchestrator.Report(c.Request().Context(), sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, coachdto.ReportResponse{
		Report:         report,
		AnalysisStatus: status,
	})
}

// Retry handles POST /v1/sessions/:id/report/retry
// @Summary      Re-run analysis for a completed session
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  coach.ReportResponse
// @Router       /sessions/{id}/report/retry [post]
func (h *Analysis) Retry(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sess, err := h.sessions.Get(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if sess.IsActive() {
		return HandleError(h.logger, c, apperrors.ErrSessionInvalidState(
			sessionID.String(), sess.Status, entities.SessionStatusCompleted))
	}

	h.orchestrator.RunAsync(sessionID)
	return HandleSuccess(h.logger, c, coachdto.ReportResponse{
		AnalysisStatus: entities.AnalysisStatusProcessing,
	})
}
