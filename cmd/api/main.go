package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/pitchlabs/salescoach/pkg/validator"

	"github.com/pitchlabs/salescoach/internal/adapter/handler"
	"github.com/pitchlabs/salescoach/internal/adapter/repository"
	"github.com/pitchlabs/salescoach/internal/infrastructure/cache"
	"github.com/pitchlabs/salescoach/internal/infrastructure/database"
	"github.com/pitchlabs/salescoach/internal/infrastructure/external/livekit"
	httpmw "github.com/pitchlabs/salescoach/internal/infrastructure/http/middleware"
	"github.com/pitchlabs/salescoach/internal/infrastructure/storage"
	"github.com/pitchlabs/salescoach/internal/usecase/analysis"
	"github.com/pitchlabs/salescoach/internal/usecase/engine"
	"github.com/pitchlabs/salescoach/internal/usecase/ingest"
	"github.com/pitchlabs/salescoach/internal/usecase/livecoach"
	sessionUsecase "github.com/pitchlabs/salescoach/internal/usecase/session"
	pkgai "github.com/pitchlabs/salescoach/pkg/ai"
	"github.com/pitchlabs/salescoach/pkg/config"
	"github.com/pitchlabs/salescoach/pkg/jwt"
)

// @title           SalesCoach API
// @version         1.0
// @description     Sales-training session orchestration and scoring API

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying SQL migrations...")
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; run them via scripts/migrate.go in CI/CD")
	}

	// Initialize the analysis status store: Redis when reachable, in-memory
	// otherwise.
	var statusStore analysis.StatusStore
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), using in-memory status store", err)
		statusStore = cache.NewMemoryStatusStore()
	} else {
		defer redisClient.Close()
		statusStore = cache.NewRedisStatusStore(redisClient)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	sessionRepo := repository.NewSessionRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize AI client
	log.Println("🤖 Initializing AI components...")
	groqClient := pkgai.NewGroqClient(&cfg.Groq)

	// Initialize transcript archive (optional)
	var archive sessionUsecase.ArchiveStore
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Printf("⚠️  Object storage unavailable (%v), transcript archiving disabled", err)
	} else {
		archive = minioClient
		log.Println("🗄️  Transcript archive ready")
	}

	// Initialize voice room client
	log.Println("🎥 Initializing voice room client...")
	voiceClient := livekit.NewClient(
		cfg.Voice.URL,
		cfg.Voice.APIKey,
		cfg.Voice.APISecret,
		cfg.Voice.UseMock,
	)
	if cfg.Voice.UseMock {
		log.Println("⚠️  Voice rooms running in MOCK mode (no real server needed)")
	}

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize engines
	log.Println("🧠 Initializing coaching engines...")
	phases := engine.NewPhaseController()
	behavior := engine.NewBehaviorModel(engine.BehaviorConfig{
		RepetitionWindow: cfg.Coaching.RepetitionWindow,
	})
	checker := engine.NewComplianceEngine()
	scorer := engine.NewScoringEngine(checker)

	// Initialize services
	log.Println("✨ Initializing services...")
	orchestrator := analysis.NewOrchestrator(
		sessionRepo,
		reportRepo,
		scorer,
		checker,
		groqClient,
		statusStore,
		cfg.Coaching.AnalysisTimeout,
		logger,
	)
	sessionService := sessionUsecase.NewService(
		sessionRepo,
		groqClient,
		phases,
		behavior,
		checker,
		voiceClient,
		archive,
		orchestrator,
		logger,
	)
	ingestService := ingest.NewService(
		sessionRepo,
		ingest.NewAssemblyTranscriber(cfg.Assembly.APIKey),
		logger,
	)
	liveCoachService := livecoach.NewService(scorer, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	sessionHandler := handler.NewSessionHandler(sessionService, ingestService, logger)
	analysisHandler := handler.NewAnalysisHandler(sessionService, orchestrator, logger)
	liveCoachHandler := handler.NewLiveCoachHandler(liveCoachService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authMW := httpmw.NewAuthMiddleware(jwtManager)
	router := handler.NewRouter(cfg, sessionHandler, analysisHandler, liveCoachHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("👋 Server stopped")
}
