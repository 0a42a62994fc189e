package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", "200", time.Millisecond)
		m.ObserveXP("habit_completed", 5, true)
		m.IncReminder("task", "sent")
		m.ObserveTick(time.Second)
		m.IncJobRun("reminder_tick", "succeeded")
	})

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
}

func TestObserveXPSplitsAwardsAndPenalties(t *testing.T) {
	m := newMetrics()
	m.ObserveXP("habit_completed", 5, false)
	m.ObserveXP("habit_completed", 5, true)
	m.ObserveXP("habit_missed", -10, false)
	m.ObserveXP("achievement:streak_7", 50, false)

	assert.Equal(t, 10.0, m.xpAwarded.Value("habit_completed"))
	assert.Equal(t, 10.0, m.xpPenalised.Value("habit_missed"))
	assert.Equal(t, 50.0, m.xpAwarded.Value("achievement"))
	assert.Equal(t, 1.0, m.levelUps.Value())
}

func TestPrometheusExposition(t *testing.T) {
	m := newMetrics()
	m.IncReminder("habit", "sent")
	m.ObserveAPI("POST", "/api/tasks", "201", 30*time.Millisecond)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "# TYPE mentor_reminders_total counter")
	assert.Contains(t, body, `mentor_reminders_total{kind="habit",outcome="sent"} 1`)
	assert.Contains(t, body, `mentor_api_request_duration_seconds_bucket{method="POST",route="/api/tasks",le="0.05"} 1`)
	assert.Contains(t, body, `mentor_api_request_duration_seconds_count{method="POST",route="/api/tasks"} 1`)
}

func TestHistogramWithoutLabels(t *testing.T) {
	h := NewHistogramVec("tick_seconds", "tick", nil, []float64{1, 2})
	h.Observe(1.5)
	h.Observe(3)

	var buf bytes.Buffer
	require.NoError(t, h.WritePrometheus(&buf))
	out := buf.String()
	assert.Contains(t, out, `tick_seconds_bucket{le="1"} 0`)
	assert.Contains(t, out, `tick_seconds_bucket{le="2"} 1`)
	assert.Contains(t, out, `tick_seconds_bucket{le="+Inf"} 2`)
	assert.True(t, strings.Contains(out, "tick_seconds_count 2"))
}

func TestLabelEscaping(t *testing.T) {
	assert.Equal(t, `{a="x\"y",b="unknown"}`, labelString([]string{"a", "b"}, []string{`x"y`}))
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ParseHeaders(" a=1, b = 2 ,bad,c="))
	assert.Nil(t, ParseHeaders(""))
	assert.Equal(t, 1.0, ClampRatio(3))
	assert.Equal(t, 0.0, ClampRatio(-1))
}
