package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDeadline(t *testing.T) {
	base := day("2026-01-31")

	next, ok := NextDeadline("daily", base, nil)
	assert.True(t, ok)
	assert.Equal(t, day("2026-02-01"), next.Deadline)
	assert.True(t, next.Recurring)

	next, ok = NextDeadline("weekly", base, nil)
	assert.True(t, ok)
	assert.Equal(t, day("2026-02-07"), next.Deadline)

	next, ok = NextDeadline("monthly", base, nil)
	assert.True(t, ok)
	assert.Equal(t, day("2026-03-02"), next.Deadline)

	fixed := day("2026-06-01")
	next, ok = NextDeadline("on_date", base, &fixed)
	assert.True(t, ok)
	assert.Equal(t, fixed, next.Deadline)
	assert.False(t, next.Recurring)

	_, ok = NextDeadline("on_date", base, nil)
	assert.False(t, ok)
	_, ok = NextDeadline("yearly", base, nil)
	assert.False(t, ok)
}
