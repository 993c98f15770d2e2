package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	apiReqError     *Counter
	structureOps    *CounterVec
	structureLat    *HistogramVec
	resetAttempts   *HistogramVec
	reviewDecisions *CounterVec
	uploads         *CounterVec
	redisUp         *Gauge
	redisPing       *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process metrics, or nil when metrics are disabled.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("coursehub_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"coursehub_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight:  NewGauge("coursehub_api_inflight_requests", "In-flight API requests."),
		apiReqError:  NewCounter("coursehub_api_requests_5xx_total", "API requests that ended in a server error."),
		structureOps: NewCounterVec("coursehub_structure_operations_total", "Structure generate/reset outcomes.", []string{"operation", "outcome"}),
		structureLat: NewHistogramVec(
			"coursehub_structure_operation_duration_seconds",
			"Structure generate/reset duration in seconds.",
			[]string{"operation"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		resetAttempts: NewHistogramVec(
			"coursehub_structure_reset_verify_attempts",
			"Verification attempts needed before a reset converged or gave up.",
			nil,
			[]float64{1, 2, 3, 5, 8},
		),
		reviewDecisions: NewCounterVec("coursehub_review_decisions_total", "Resource review decisions.", []string{"decision"}),
		uploads:         NewCounterVec("coursehub_resource_uploads_total", "Resource uploads by type and outcome.", []string{"resource_type", "outcome"}),
		redisUp:         NewGauge("coursehub_redis_up", "Whether the lock store answered the last ping."),
		redisPing:       NewGauge("coursehub_redis_ping_seconds", "Latency of the last lock store ping."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqError,
		m.structureOps, m.structureLat, m.resetAttempts,
		m.reviewDecisions, m.uploads, m.redisUp, m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveStructureOp records a generate or reset. outcome is "ok" or an
// error reason such as "structure_exists".
func (m *Metrics) ObserveStructureOp(operation, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "error"
	}
	m.structureOps.Inc(operation, outcome)
	m.structureLat.Observe(dur.Seconds(), operation)
}

func (m *Metrics) ObserveResetAttempts(attempts int) {
	if m == nil {
		return
	}
	m.resetAttempts.Observe(float64(attempts))
}

func (m *Metrics) IncReviewDecision(decision string) {
	if m == nil {
		return
	}
	m.reviewDecisions.Inc(strings.TrimSpace(decision))
}

func (m *Metrics) IncUpload(resourceType, outcome string) {
	if m == nil {
		return
	}
	m.uploads.Inc(resourceType, outcome)
}

// StartRedisCollector pings the lock store every interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string, interval time.Duration) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
