package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	coachdto "github.com/pitchlabs/salescoach/internal/adapter/dto/coach"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/usecase/livecoach"
)

// LiveCoach handles on-demand scoring requests from the live-coaching
// surface.
type LiveCoach struct {
	scorer *livecoach.Service
	logger *zap.Logger
}

// NewLiveCoachHandler creates a new live-coach handler
func NewLiveCoachHandler(scorer *livecoach.Service, logger *zap.Logger) *LiveCoach {
	return &LiveCoach{
		scorer: scorer,
		logger: logger,
	}
}

// Score handles POST /v1/live/score
// @Summary      Score submitted turns on demand
// @Description  Stateless compliance and scoring pass over the submitted turns
// @Tags         LiveCoach
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      coach.LiveScoreRequest  true  "Turns to score"
// @Success      200      {object}  coach.LiveScoreResponse
// @Router       /live/score [post]
func (h *LiveCoach) Score(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return HandleError(h.logger, c, err)
	}

	var req coachdto.LiveScoreRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	turns := make([]livecoach.Turn, 0, len(req.Turns))
	for _, t := range req.Turns {
		turns = append(turns, livecoach.Turn{Speaker: t.Speaker, Text: t.Text, TS: t.TS})
	}

	report, err := h.scorer.Score(req.SessionKey, entities.SessionPhase(req.PhaseKey), turns)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// This surface consumes the flat payload directly, not the standard
	// envelope.
	return c.JSON(200, coachdto.NewLiveScoreResponse(report))
}
