package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	httpmw "github.com/pitchlabs/salescoach/internal/infrastructure/http/middleware"
	"github.com/pitchlabs/salescoach/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	sessionHandler   *Session
	analysisHandler  *Analysis
	liveCoachHandler *LiveCoach
	authMW           *httpmw.AuthMiddleware
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	sessionHandler *Session,
	analysisHandler *Analysis,
	liveCoachHandler *LiveCoach,
	authMW *httpmw.AuthMiddleware,
) *Router {
	return &Router{
		cfg:              cfg,
		sessionHandler:   sessionHandler,
		analysisHandler:  analysisHandler,
		liveCoachHandler: liveCoachHandler,
		authMW:           authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Swagger documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group, JWT-protected
	v1 := e.Group("/v1", rt.authMW.Authenticate)

	rt.setupSessionRoutes(v1)
	rt.setupLiveRoutes(v1)
}

// setupSessionRoutes configures training-session routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessions := g.Group("/sessions")

	sessions.POST("", rt.sessionHandler.Create)
	sessions.GET("", rt.sessionHandler.List)
	sessions.GET("/:id", rt.sessionHandler.Get)
	sessions.GET("/:id/transcript", rt.sessionHandler.Transcript)
	sessions.POST("/:id/respond", rt.sessionHandler.Respond)
	sessions.POST("/:id/advance", rt.sessionHandler.Advance)
	sessions.POST("/:id/end", rt.sessionHandler.End)
	sessions.POST("/:id/recording", rt.sessionHandler.Recording)
	sessions.GET("/:id/report", rt.analysisHandler.Report)
	sessions.POST("/:id/report/retry", rt.analysisHandler.Retry)
}

// setupLiveRoutes configures the live-coaching surface
func (rt *Router) setupLiveRoutes(g *echo.Group) {
	live := g.Group("/live")

	live.POST("/score", rt.liveCoachHandler.Score)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
