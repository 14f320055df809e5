package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calldeskhq/backend/internal/analytics"
	"github.com/calldeskhq/backend/internal/api"
	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/config"
	"github.com/calldeskhq/backend/internal/ingestion"
	"github.com/calldeskhq/backend/internal/metrics"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/calldeskhq/backend/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting CallDesk backend server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create storage backend
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Create authenticator
	var authenticator *auth.Authenticator
	if cfg.OIDCIssuerURL != "" {
		authenticator, err = auth.NewWithJWKS(cfg.JWTSecret, cfg.TokenTTL, cfg.OIDCIssuerURL, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize JWKS verification")
		}
	} else {
		authenticator = auth.New(cfg.JWTSecret, cfg.TokenTTL, log.Logger)
	}

	// Create services and handlers
	analyticsService := analytics.NewService(store, log.Logger)
	analyticsHandler := api.NewAnalyticsHandler(analyticsService, log.Logger)
	authHandler := api.NewAuthHandler(store, authenticator, log.Logger)
	schemaHandler := api.NewSchemaHandler(store, log.Logger)
	goalsHandler := api.NewGoalsHandler(store, log.Logger)
	managerHandler := api.NewManagerHandler(store, log.Logger)
	teamHandler := api.NewTeamHandler(store, log.Logger)
	eventHandler := api.NewEventHandler(store, log.Logger)

	leadDesk := ingestion.NewLeadDeskClient(cfg.LeadDeskBaseURL, cfg.LeadDeskAuthToken, cfg.LeadDeskTimeout)
	webhookHandler := ingestion.NewWebhookHandler(store, leadDesk, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Webhook routes authenticated with the company API key
	r.Group(func(r chi.Router) {
		r.Use(auth.APIKeyMiddleware(store, log.Logger))
		r.Get("/api/leaddesk/webhook", webhookHandler.HandleCall)
	})

	// JWT-protected routes
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)

		r.Route("/api/datavis", func(r chi.Router) {
			r.Get("/daily-activity", analyticsHandler.DailyActivity)
			r.Get("/block-performance", analyticsHandler.BlockPerformance)
			r.Get("/block-performance-filtered", analyticsHandler.BlockPerformanceFiltered)
			r.Get("/long-call-distribution", analyticsHandler.LongCallDistribution)
			r.Get("/seed-timeline-heatmap", analyticsHandler.SeedTimelineHeatmap)
			r.Get("/conversion-funnel", analyticsHandler.ConversionFunnel)
			r.Get("/consistency-history", analyticsHandler.ConsistencyHistory)
		})

		r.Route("/api/schemas", func(r chi.Router) {
			r.Post("/", schemaHandler.Create)
			r.Get("/", schemaHandler.List)
			r.Get("/{schemaId}", schemaHandler.Get)
			r.Delete("/{schemaId}", schemaHandler.Delete)
		})

		r.Route("/api/goals", func(r chi.Router) {
			r.Post("/", goalsHandler.Create)
			r.Get("/", goalsHandler.List)
			r.Put("/{goalId}", goalsHandler.Update)
			r.Delete("/{goalId}", goalsHandler.Delete)
		})

		r.Route("/api/managers", func(r chi.Router) {
			r.Use(auth.RequireRole(types.RoleMainAdmin))
			r.Post("/", managerHandler.Create)
			r.Get("/", managerHandler.List)
			r.Get("/{managerId}", managerHandler.Get)
			r.Delete("/{managerId}", managerHandler.Delete)
		})

		r.Route("/api/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Put("/{teamId}", teamHandler.Update)
			r.Delete("/{teamId}", teamHandler.Delete)
		})

		r.Post("/api/events", eventHandler.Create)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"calldesk-backend"}`)
}
