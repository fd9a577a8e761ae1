package handler

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	sessiondto "github.com/pitchlabs/salescoach/internal/adapter/dto/session"
	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/internal/usecase/ingest"
	sessionUsecase "github.com/pitchlabs/salescoach/internal/usecase/session"
)

// Session handles training-session HTTP requests
type Session struct {
	sessions *sessionUsecase.Service
	ingest   *ingest.Service
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *sessionUsecase.Service, ingestSvc *ingest.Service, logger *zap.Logger) *Session {
	return &Session{
		sessions: sessions,
		ingest:   ingestSvc,
		logger:   logger,
	}
}

// Create handles POST /v1/sessions
// @Summary      Start a training session
// @Description  Creates an active session with the given buyer profile
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      session.CreateSessionRequest  true  "Session creation request"
// @Success      200      {object}  session.CreateSessionResponse
// @Router       /sessions [post]
func (h *Session) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req sessiondto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	result, err := h.sessions.Start(c.Request().Context(), sessionUsecase.StartInput{
		UserID: userID,
		Persona: entities.PersonaConfig{
			Personality:      req.BuyerProfile.Personality,
			ExperienceLevel:  req.BuyerProfile.ExperienceLevel,
			EmotionalState:   req.BuyerProfile.EmotionalState,
			FinancialComfort: req.BuyerProfile.FinancialComfort,
			ResistanceLevel:  req.BuyerProfile.ResistanceLevel,
			QuestionDepth:    req.BuyerProfile.QuestionDepth,
		},
		WithVoice: req.WithVoice,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, sessiondto.CreateSessionResponse{
		Session:    sessiondto.NewSessionResponse(result.Session),
		VoiceToken: result.VoiceToken,
	})
}

// List handles GET /v1/sessions
// @Summary      List the caller's sessions
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   session.SessionResponse
// @Router       /sessions [get]
func (h *Session) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req sessiondto.ListSessionsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	found, err := h.sessions.List(c.Request().Context(), userID, req.Limit, req.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out := make([]*sessiondto.SessionResponse, 0, len(found))
	for _, s := range found {
		out = append(out, sessiondto.NewSessionResponse(s))
	}
	return HandleSuccess(h.logger, c, out)
}

// Get handles GET /v1/sessions/:id
// @Summary      Get one session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.SessionResponse
// @Router       /sessions/{id} [get]
func (h *Session) Get(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sess, err := h.sessions.Get(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessiondto.NewSessionResponse(sess))
}

// Transcript handles GET /v1/sessions/:id/transcript
// @Summary      Get the ordered session transcript
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.TranscriptResponse
// @Router       /sessions/{id}/transcript [get]
func (h *Session) Transcript(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	entries, err := h.sessions.Transcript(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessiondto.TranscriptResponse{
		SessionID: sessionID.String(),
		Entries:   entries,
	})
}

// Respond handles POST /v1/sessions/:id/respond
// @Summary      Submit one trainee turn
// @Description  Returns the buyer's reply or interruption with emotion and phase state
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Session ID"
// @Param        request  body      session.RespondRequest  true  "Trainee turn"
// @Success      200      {object}  session.TurnResponse
// @Router       /sessions/{id}/respond [post]
func (h *Session) Respond(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req sessiondto.RespondRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	result, err := h.sessions.Respond(c.Request().Context(), userID, sessionID, sessionUsecase.TurnInput{
		Utterance:             req.UserMessage,
		AgentSpeakingDuration: req.AgentSpeakingDuration,
		SilenceDuration:       req.SilenceDuration,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, sessiondto.TurnResponse{
		Response:           result.Reply,
		Emotion:            string(result.Emotion),
		IsInterruption:     result.Interrupted,
		InterruptionReason: string(result.InterruptionReason),
		ShouldAdvancePhase: result.PhaseAdvanced,
		NextPhase:          string(result.Phase),
	})
}

// Advance handles POST /v1/sessions/:id/advance
// @Summary      Manually advance the session phase
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.AdvanceResponse
// @Router       /sessions/{id}/advance [post]
func (h *Session) Advance(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	phase, err := h.sessions.Advance(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessiondto.AdvanceResponse{CurrentPhase: string(phase)})
}

// End handles POST /v1/sessions/:id/end
// @Summary      End a session and kick off scoring
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.EndSessionResponse
// @Router       /sessions/{id}/end [post]
func (h *Session) End(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	sess, err := h.sessions.End(c.Request().Context(), userID, sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, sessiondto.EndSessionResponse{
		Session:        sessiondto.NewSessionResponse(sess),
		AnalysisStatus: entities.AnalysisStatusProcessing,
		FeedbackURL:    fmt.Sprintf("/v1/sessions/%s/report", sessionID),
	})
}

// Recording handles POST /v1/sessions/:id/recording
// @Summary      Transcribe a recorded call into the session transcript
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Session ID"
// @Param        request  body      session.IngestRecordingRequest  true  "Recording location"
// @Success      200      {object}  session.IngestRecordingResponse
// @Router       /sessions/{id}/recording [post]
func (h *Session) Recording(c echo.Context) error {
	userID, sessionID, err := identifySession(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req sessiondto.IngestRecordingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	added, err := h.ingest.Ingest(c.Request().Context(), userID, sessionID, req.AudioURL)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessiondto.IngestRecordingResponse{EntriesAdded: added})
}

// identifySession extracts the caller and the session path parameter.
func identifySession(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.ErrInvalidArgument("invalid session id")
	}
	return userID, sessionID, nil
}
