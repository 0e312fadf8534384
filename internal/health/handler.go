package health

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/pose-coach/internal/detector"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/labstack/echo/v4"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests     uint64 `json:"total_requests"`
	ActiveConnections int64  `json:"active_connections"`
}

type Stats struct {
	Requests RequestStats `json:"requests"`
	Runtime  RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

type PipelineResponse struct {
	Skeleton        string  `json:"skeleton"`
	Keypoints       int     `json:"keypoints"`
	DescriptorWidth int     `json:"descriptor_width"`
	SampleInterval  string  `json:"sample_interval"`
	SmoothingWindow int     `json:"smoothing_window"`
	MinConfidence   float64 `json:"min_confidence"`
	AlignMode       string  `json:"align_mode"`
	Fingerprint     string  `json:"fingerprint"`
}

// Prober is implemented by collaborators that can report reachability.
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

type Config struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Qdrant   *qdrant.Client
	Detector detector.Detector
	Pipeline similarity.Config
	// FeedbackEnabled is false when no LLM key is configured and every
	// comparison gets the fallback message.
	FeedbackEnabled bool
	Version         string
}

type Handler struct {
	cfg       Config
	startTime time.Time

	totalRequests     uint64
	activeConnections int64
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		cfg:       cfg,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
	e.GET("/health/pipeline", h.Pipeline)
}

// Middleware counts requests and in-flight connections for Readiness.
func (h *Handler) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementConnections() {
	atomic.AddInt64(&h.activeConnections, 1)
}

func (h *Handler) DecrementConnections() {
	atomic.AddInt64(&h.activeConnections, -1)
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := []struct {
		name  string
		check func(context.Context) ComponentStatus
	}{
		{"database", h.checkDatabase},
		{"redis", h.checkRedis},
		{"qdrant", h.checkQdrant},
		{"detector", h.checkDetector},
		{"feedback", h.checkFeedback},
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	overallStatus := computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := HealthResponse{
		Status:        overallStatus,
		Timestamp:     time.Now().UTC(),
		Version:       h.cfg.Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Requests: RequestStats{
				TotalRequests:     atomic.LoadUint64(&h.totalRequests),
				ActiveConnections: atomic.LoadInt64(&h.activeConnections),
			},
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
				MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
				MemorySysMB:        memStats.Sys / 1024 / 1024,
				NumGC:              memStats.NumGC,
			},
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, resp)
}

// Pipeline reports the settings every comparison is computed with.
func (h *Handler) Pipeline(c echo.Context) error {
	p := h.cfg.Pipeline
	return c.JSON(http.StatusOK, PipelineResponse{
		Skeleton:        p.Skeleton.Name,
		Keypoints:       p.Skeleton.Size(),
		DescriptorWidth: p.Skeleton.DescriptorWidth(),
		SampleInterval:  p.SampleInterval.String(),
		SmoothingWindow: p.SmoothingWindow,
		MinConfidence:   p.MinConfidence,
		AlignMode:       string(p.AlignMode),
		Fingerprint:     p.Fingerprint(),
	})
}

func unhealthy(start time.Time, msg string) ComponentStatus {
	return ComponentStatus{
		Status:    StatusUnhealthy,
		LatencyMs: time.Since(start).Milliseconds(),
		Error:     msg,
	}
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.cfg.DB == nil {
		return unhealthy(start, "database not configured")
	}

	sqlDB, err := h.cfg.DB.DB()
	if err != nil {
		return unhealthy(start, "failed to get underlying db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(start, "ping failed")
	}

	return ComponentStatus{
		Status:    evaluateDBStats(sqlDB.Stats()),
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func evaluateDBStats(stats sql.DBStats) Status {
	if stats.OpenConnections >= stats.MaxOpenConnections && stats.MaxOpenConnections > 0 {
		return StatusDegraded
	}
	return StatusHealthy
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.cfg.Redis == nil {
		return unhealthy(start, "redis not configured")
	}
	if err := h.cfg.Redis.Ping(ctx).Err(); err != nil {
		return unhealthy(start, "ping failed")
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkQdrant(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.cfg.Qdrant == nil {
		return unhealthy(start, "qdrant not configured")
	}
	if _, err := h.cfg.Qdrant.ListCollections(ctx); err != nil {
		return unhealthy(start, "list collections failed")
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkDetector(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.cfg.Detector == nil {
		return unhealthy(start, "detector not configured")
	}
	if p, ok := h.cfg.Detector.(Prober); ok && !p.IsAvailable(ctx) {
		return unhealthy(start, "detector unreachable")
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkFeedback(ctx context.Context) ComponentStatus {
	if !h.cfg.FeedbackEnabled {
		return ComponentStatus{Status: StatusDegraded, Error: "no API key, fallback feedback only"}
	}
	return ComponentStatus{Status: StatusHealthy}
}

// computeOverallStatus treats the database and the detector as critical;
// anything else only degrades the service.
func computeOverallStatus(components map[string]ComponentStatus) Status {
	for _, name := range []string{"database", "detector"} {
		if status, ok := components[name]; ok && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	for _, status := range components {
		if status.Status != StatusHealthy {
			return StatusDegraded
		}
	}
	return StatusHealthy
}
