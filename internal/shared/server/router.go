package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-generator/internal/generation"
	"resume-generator/internal/services/health"
	"resume-generator/internal/shared/metrics"
	"resume-generator/internal/shared/server/middleware"
	"resume-generator/internal/shared/server/respond"
	"resume-generator/internal/shared/telemetry"
)

// ProgressSource returns the latest batch progress.
type ProgressSource interface {
	Snapshot() (generation.Progress, bool)
}

// Tracker records the latest progress update. It is a generation.Observer.
type Tracker struct {
	mu      sync.RWMutex
	last    generation.Progress
	started bool
}

// Progress implements generation.Observer.
func (t *Tracker) Progress(p generation.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = p
	t.started = true
}

// Snapshot returns the last update and whether any arrived.
func (t *Tracker) Snapshot() (generation.Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.started
}

var _ generation.Observer = (*Tracker)(nil)

type progressBody struct {
	Done         int     `json:"done"`
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	TotalCostUSD float64 `json:"totalCostUsd"`
	ElapsedSec   float64 `json:"elapsedSeconds"`
}

// NewRouter constructs the Gin engine for the status server.
func NewRouter(progress ProgressSource, checks *health.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging("/metrics", "/healthz"),
		middleware.Recovery(),
	)

	if checks == nil {
		checks = health.NewService()
	}
	r.GET("/healthz", func(c *gin.Context) {
		report := checks.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/progress", func(c *gin.Context) {
		if progress == nil {
			respond.Error(c, http.StatusNotFound, "not_found", "No batch is running", nil)
			return
		}
		p, ok := progress.Snapshot()
		if !ok {
			respond.Error(c, http.StatusNotFound, "not_found", "No progress reported yet", nil)
			return
		}
		respond.OK(c, progressBody{
			Done:         p.Done,
			Total:        p.Total,
			Succeeded:    p.Succeeded,
			Failed:       p.Failed,
			TotalCostUSD: p.TotalCost.Dollars(),
			ElapsedSec:   p.Elapsed.Seconds(),
		})
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":9090"
	}
	if port[0] == ':' {
		return port
	}
	for _, ch := range port {
		if ch == ':' {
			return port
		}
	}
	return ":" + port
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              Addr(addr),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("status_server.listening", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
