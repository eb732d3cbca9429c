// Package api provides the HTTP API for AirIndex.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/airindex/airindex/internal/api/handler"
	"github.com/airindex/airindex/internal/api/middleware"
	"github.com/airindex/airindex/internal/assessment"
	"github.com/airindex/airindex/internal/auth"
	"github.com/airindex/airindex/internal/ingest/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	AuthService       *auth.Service
	AssessmentService *assessment.Service
	Pool              *pgxpool.Pool
	FeedRegistry      *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airindex-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool, cfg.FeedRegistry, cfg.AssessmentService)
	assessmentHandler := handler.NewAssessmentHandler(cfg.AssessmentService)
	locationHandler := handler.NewLocationHandler(cfg.AssessmentService)
	metadataHandler := handler.NewMetadataHandler()
	adminHandler := handler.NewAdminHandler(cfg.AssessmentService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByOperator(middleware.AdminRateLimit)   // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/pollutants", metadataHandler.ListPollutants)
			r.Get("/categories", metadataHandler.ListCategories)
		})

		// Assessment endpoints (public) - standard rate limiting
		r.Route("/assessments", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", assessmentHandler.List)
			r.Get("/{assessmentId}", assessmentHandler.Get)
		})
		r.With(standardRateLimit).Post("/assessments:compute", assessmentHandler.Compute)

		// Location lookups reach upstream feeds - strict rate limiting
		r.With(expensiveRateLimit).Get("/locations/{coordinates}/assessment", locationHandler.GetAssessment)

		// Admin endpoints (authenticated, admin role) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin)
			r.Use(adminRateLimit)
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
			r.Post("/locations/{coordinates}/refresh", adminHandler.RefreshLocation)
		})
	})

	return r
}
