package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// Metrics holds the process-wide counters exposed on /metrics.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	xpAwarded    *CounterVec
	xpPenalised  *CounterVec
	levelUps     *Counter
	achievements *CounterVec
	reminders    *CounterVec
	tickDuration *HistogramVec
	ticksDropped *CounterVec
	jobRuns      *CounterVec
	llmRequests  *CounterVec
	llmLatency   *HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Current returns the initialised registry or nil. Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init() *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("mentor_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"mentor_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight:  NewGauge("mentor_api_inflight_requests", "In-flight API requests."),
		xpAwarded:    NewCounterVec("mentor_xp_awarded_total", "XP granted by event type.", []string{"event_type"}),
		xpPenalised:  NewCounterVec("mentor_xp_penalised_total", "XP removed by penalty type.", []string{"event_type"}),
		levelUps:     NewCounter("mentor_level_ups_total", "Level-ups across all users."),
		achievements: NewCounterVec("mentor_achievements_unlocked_total", "Achievement unlocks by code.", []string{"code"}),
		reminders:    NewCounterVec("mentor_reminders_total", "Reminder outcomes by kind.", []string{"kind", "outcome"}),
		tickDuration: NewHistogramVec(
			"mentor_reminder_tick_duration_seconds",
			"Reminder dispatcher tick duration.",
			nil,
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		ticksDropped: NewCounterVec("mentor_job_ticks_dropped_total", "Scheduled ticks skipped because the previous run was still active.", []string{"job"}),
		jobRuns:      NewCounterVec("mentor_job_runs_total", "Background job runs by job/status.", []string{"job", "status"}),
		llmRequests:  NewCounterVec("mentor_llm_requests_total", "LLM calls by backend/status.", []string{"backend", "status"}),
		llmLatency: NewHistogramVec(
			"mentor_llm_request_duration_seconds",
			"LLM call latency by backend.",
			[]string{"backend"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 35, 60},
		),
	}
}

// StartServer serves /metrics on addr until ctx is cancelled.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = writeAll(w,
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.xpAwarded, m.xpPenalised, m.levelUps, m.achievements,
		m.reminders, m.tickDuration, m.ticksDropped, m.jobRuns,
		m.llmRequests, m.llmLatency,
	)
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
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveXP records one ledger write; negative amounts count as penalties.
func (m *Metrics) ObserveXP(eventType string, amount int, leveledUp bool) {
	if m == nil {
		return
	}
	if strings.HasPrefix(eventType, "achievement:") {
		eventType = "achievement"
	}
	if amount >= 0 {
		m.xpAwarded.Add(float64(amount), eventType)
	} else {
		m.xpPenalised.Add(float64(-amount), eventType)
	}
	if leveledUp {
		m.levelUps.Inc()
	}
}

func (m *Metrics) IncAchievement(code string) {
	if m == nil {
		return
	}
	m.achievements.Inc(code)
}

// IncReminder counts a reminder outcome: sent, failed or deduped.
func (m *Metrics) IncReminder(kind, outcome string) {
	if m == nil {
		return
	}
	m.reminders.Inc(kind, outcome)
}

func (m *Metrics) ObserveTick(dur time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(dur.Seconds())
}

func (m *Metrics) IncTickDropped(job string) {
	if m == nil {
		return
	}
	m.ticksDropped.Inc(job)
}

func (m *Metrics) IncJobRun(job, status string) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(job, status)
}

func (m *Metrics) ObserveLLM(backend, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(backend, status)
	m.llmLatency.Observe(dur.Seconds(), backend)
}
