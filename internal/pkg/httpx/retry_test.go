package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestBackoffDoublesUpToMax(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 5 * time.Second}
	assert.Equal(t, time.Second, b.Delay(0, nil))
	assert.Equal(t, 2*time.Second, b.Delay(1, nil))
	assert.Equal(t, 4*time.Second, b.Delay(2, nil))
	assert.Equal(t, 5*time.Second, b.Delay(3, nil))
	assert.Equal(t, 5*time.Second, b.Delay(30, nil))
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	assert.Equal(t, 3*time.Second, b.Delay(0, resp))

	resp.Header.Set("Retry-After", "120")
	assert.Equal(t, 10*time.Second, b.Delay(0, resp))
}

func TestBackoffJitterStaysInRange(t *testing.T) {
	b := DefaultBackoff()
	for i := 0; i < 50; i++ {
		d := b.Delay(0, nil)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(context.DeadlineExceeded))
	assert.True(t, Retryable(fmt.Errorf("wrap: %w", statusErr(503))))
	assert.True(t, Retryable(statusErr(429)))
	assert.False(t, Retryable(statusErr(400)))
	assert.False(t, Retryable(context.Canceled))
	assert.False(t, Retryable(nil))
}
