package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airindex/airindex/internal/ingest"
	"github.com/airindex/airindex/internal/worker"
)

// mockRefresher records refresh calls and returns a configurable error.
type mockRefresher struct {
	mu    sync.Mutex
	calls []worker.Point
	err   error
}

func (m *mockRefresher) RefreshLocation(_ context.Context, lat, lon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, worker.Point{Lat: lat, Lon: lon})
	return m.err
}

func (m *mockRefresher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.Targets)
}

func TestDefaultMonitorTargets(t *testing.T) {
	targets := worker.DefaultMonitorTargets()

	// Should have multiple cities
	assert.GreaterOrEqual(t, len(targets), 5)

	// Find Amsterdam
	var amsterdam *worker.MonitorTarget
	for i := range targets {
		if targets[i].Name == "Amsterdam" {
			amsterdam = &targets[i]
			break
		}
	}
	require.NotNil(t, amsterdam, "Amsterdam should be in targets")
	assert.Equal(t, 1, amsterdam.Priority)
	assert.GreaterOrEqual(t, len(amsterdam.Points), 2)
}

func TestRefreshConfig_AllPoints(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "City A",
				Points: []worker.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
			},
			{
				Name:   "City B",
				Points: []worker.Point{{Lat: 3, Lon: 3}},
			},
		},
	}

	points := cfg.AllPoints()
	assert.Len(t, points, 3)
	assert.Equal(t, cfg.TotalPoints(), 3)
}

func TestRefreshConfig_TotalPoints(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()
	total := cfg.TotalPoints()

	// Should have a reasonable number of points
	assert.Greater(t, total, 10)
}

func TestRefreshJob_Run_RefreshesAllPoints(t *testing.T) {
	refresher := &mockRefresher{}
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name: "Test",
				Points: []worker.Point{
					{Lat: 52.3676, Lon: 4.9041},
					{Lat: 51.9244, Lon: 4.4777},
					{Lat: 48.8566, Lon: 2.3522},
				},
			},
		},
		Concurrency: 2,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: refresher,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.TotalPoints)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, refresher.callCount())
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRefreshJob_Run_CollectsErrors(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("feed unavailable")}
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}, {Lat: 51.92, Lon: 4.48}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: refresher,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "feed unavailable", result.Errors[0].Error)
}

func TestRefreshJob_Run_SkipsPointsWithoutData(t *testing.T) {
	refresher := &mockRefresher{err: ingest.ErrNoDataForLocation}
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Remote",
				Points: []worker.Point{{Lat: -75.1, Lon: 123.3}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: refresher,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
}

func TestRefreshJob_Run_NoService(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	// Should complete without panicking
	assert.NotNil(t, result)
	assert.Equal(t, 1, result.TotalPoints)
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	refresher := &mockRefresher{}
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: refresher,
	})

	_ = job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.SuccessfulRefresh)
	assert.NotZero(t, metrics.LastRefreshAt)
	assert.Greater(t, metrics.LastRefreshDuration, time.Duration(0))
}

func TestRefreshJob_MetricsSnapshot(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: &mockRefresher{},
	})

	_ = job.Run(context.Background())

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "successful_refreshes")
	assert.Contains(t, snapshot, "failed_refreshes")
	assert.Contains(t, snapshot, "skipped_points")
	assert.Contains(t, snapshot, "last_refresh_at")
	assert.Contains(t, snapshot, "last_refresh_duration")
}

func TestRefreshJob_Run_WithConcurrency(t *testing.T) {
	points := make([]worker.Point, 10)
	for i := range points {
		points[i] = worker.Point{Lat: 52.0 + float64(i)*0.1, Lon: 4.0 + float64(i)*0.1}
	}

	refresher := &mockRefresher{}
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: points,
			},
		},
		Concurrency: 3,
		Timeout:     1 * time.Second,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: refresher,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 10, result.TotalPoints)
	assert.Equal(t, 10, result.Successful)
	assert.Equal(t, 10, refresher.callCount())
}

func TestRefreshJob_Run_ContextCancellation(t *testing.T) {
	points := make([]worker.Point, 100)
	for i := range points {
		points[i] = worker.Point{Lat: 52.0 + float64(i)*0.01, Lon: 4.0 + float64(i)*0.01}
	}

	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Test",
				Points: points,
			},
		},
		Concurrency: 1,
		Timeout:     100 * time.Millisecond,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: &mockRefresher{},
	})

	// Cancel context immediately
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	// Should complete (even if not all points processed)
	assert.NotNil(t, result)
}

func TestRefreshResult_Fields(t *testing.T) {
	result := &worker.RefreshResult{
		StartTime:   time.Now(),
		TotalPoints: 10,
		Successful:  7,
		Failed:      2,
		Skipped:     1,
		Errors: []worker.RefreshError{
			{Point: worker.Point{Lat: 1, Lon: 1}, Error: "timeout"},
			{Point: worker.Point{Lat: 2, Lon: 2}, Error: "unavailable"},
		},
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	assert.Equal(t, 10, result.TotalPoints)
	assert.Equal(t, 7, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, "timeout", result.Errors[0].Error)
}

func TestPoint_Fields(t *testing.T) {
	p := worker.Point{Lat: 52.3676, Lon: 4.9041}
	assert.Equal(t, 52.3676, p.Lat)
	assert.Equal(t, 4.9041, p.Lon)
}

func TestMonitorTarget_Fields(t *testing.T) {
	target := worker.MonitorTarget{
		Name:     "Amsterdam",
		Priority: 1,
		Points: []worker.Point{
			{Lat: 52.3676, Lon: 4.9041},
		},
	}

	assert.Equal(t, "Amsterdam", target.Name)
	assert.Equal(t, 1, target.Priority)
	assert.Len(t, target.Points, 1)
}

func TestNewRefreshJob_DefaultConfig(t *testing.T) {
	// Create job with empty config - should use defaults
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{}, // Empty
		Logger: zerolog.Nop(),
	})

	metrics := job.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRuns) // Not run yet
}

// BenchmarkRefreshJob_Run benchmarks the refresh job.
func BenchmarkRefreshJob_Run(b *testing.B) {
	cfg := worker.RefreshConfig{
		Targets: []worker.MonitorTarget{
			{
				Name:   "Benchmark",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     100 * time.Millisecond,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: &mockRefresher{},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = job.Run(context.Background())
	}
}
