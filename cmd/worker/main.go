// Package main provides the entrypoint for the AirIndex background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airindex/airindex/internal/assessment"
	"github.com/airindex/airindex/internal/database"
	"github.com/airindex/airindex/internal/ingest"
	"github.com/airindex/airindex/internal/ingest/openaq"
	"github.com/airindex/airindex/internal/ingest/resilience"
	"github.com/airindex/airindex/internal/ingest/stream"
	"github.com/airindex/airindex/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airindex-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirIndex worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Feed registry and OpenAQ provider
	feedRegistry := resilience.NewRegistry()
	provider := openaq.NewClient(openaq.ClientConfig{
		APIKey:   os.Getenv("OPENAQ_API_KEY"),
		Registry: feedRegistry,
	})

	assessmentService := assessment.NewService(assessment.ServiceConfig{
		Provider:   provider,
		Repository: assessment.NewPostgresRepository(pool),
		Logger:     log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  worker.DefaultRefreshConfig(),
		Logger:  log,
		Service: assessmentService,
	})

	// Periodic refresh of the monitored locations
	refreshInterval := 15 * time.Minute
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			refreshInterval = d
		} else {
			log.Warn().Str("value", v).Msg("invalid REFRESH_INTERVAL, using default")
		}
	}

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		// Refresh once on startup so caches are warm before the first tick.
		_ = refreshJob.Run(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = refreshJob.Run(ctx)
			}
		}
	}()

	// Optional Pub/Sub job handler
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
		if subscription == "" {
			subscription = "airindex-worker-jobs"
		}

		pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer pubsubHandler.Close()

		go func() {
			if err := pubsubHandler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("PUBSUB_PROJECT_ID not set, pubsub handler disabled")
	}

	// Optional Kafka observation consumer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := os.Getenv("KAFKA_TOPIC")
		if topic == "" {
			topic = "observations"
		}
		groupID := os.Getenv("KAFKA_GROUP_ID")
		if groupID == "" {
			groupID = serviceName
		}

		consumer, err := stream.NewConsumer(stream.Config{
			Brokers: strings.Split(brokers, ","),
			Topic:   topic,
			GroupID: groupID,
		}, func(ctx context.Context, obs *ingest.Observation) error {
			_, err := assessmentService.AssessObservation(ctx, obs)
			return err
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create observation consumer")
		}

		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("observation consumer stopped")
			}
		}()
	} else {
		log.Info().Msg("KAFKA_BROKERS not set, observation consumer disabled")
	}

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
