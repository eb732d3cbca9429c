package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airindex/airindex/internal/api/models"
	"github.com/airindex/airindex/internal/api/response"
	"github.com/airindex/airindex/internal/assessment"
	"github.com/airindex/airindex/internal/ingest/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
	registry  *resilience.Registry
	service   *assessment.Service
}

// NewOpsHandler creates a new OpsHandler. pool and registry may be nil when
// the deployment runs without Postgres or without registered feeds.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool, registry *resilience.Registry, service *assessment.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
		registry:  registry,
		service:   service,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - feed and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	status.Subsystems = append(status.Subsystems, h.databaseStatus(r.Context()))

	if h.registry != nil {
		for _, feed := range h.registry.GetAllHealth() {
			status.Feeds = append(status.Feeds, toFeedStatus(feed))
		}
	}

	if h.service != nil {
		cache := h.service.CacheStatus()
		status.Cache = &models.CacheStatus{
			Locations: cache.Locations,
			Fresh:     cache.Fresh,
		}
		if !cache.NewestFetch.IsZero() {
			newest := models.Timestamp(cache.NewestFetch)
			status.Cache.NewestFetch = &newest
		}
	}

	// Degrade the overall status if anything below is unhappy
	for _, sub := range status.Subsystems {
		if sub.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}
	for _, feed := range status.Feeds {
		if feed.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusDegraded
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) databaseStatus(ctx context.Context) models.SubsystemStatus {
	sub := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}

	if h.pool == nil {
		detail := "not configured"
		sub.Detail = &detail
		return sub
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.pool.Ping(pingCtx); err != nil {
		detail := err.Error()
		sub.Status = models.HealthStatusFail
		sub.Detail = &detail
	}
	return sub
}

func toFeedStatus(feed *resilience.FeedHealth) models.FeedStatus {
	out := models.FeedStatus{
		Feed:   feed.Name,
		Status: models.HealthStatusOK,
	}

	switch {
	case feed.IsUnhealthy():
		out.Status = models.HealthStatusFail
	case feed.IsDegraded():
		out.Status = models.HealthStatusDegraded
	}

	if feed.LastSuccessAt != nil {
		ts := models.Timestamp(*feed.LastSuccessAt)
		out.LastSuccessAt = &ts
	}
	if feed.LastFailureAt != nil {
		ts := models.Timestamp(*feed.LastFailureAt)
		out.LastFailureAt = &ts
	}
	if feed.LastError != "" {
		msg := feed.LastError
		out.Message = &msg
	}

	return out
}
