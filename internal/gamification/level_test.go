package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPThreshold(t *testing.T) {
	assert.Equal(t, 0, XPThreshold(0))
	assert.Equal(t, 0, XPThreshold(1))
	assert.Equal(t, 282, XPThreshold(2))
	assert.Equal(t, 519, XPThreshold(3))
	assert.Equal(t, 800, XPThreshold(4))
	assert.Equal(t, 2700, XPThreshold(9))

	for l := 1; l < 200; l++ {
		require.Less(t, XPThreshold(l), XPThreshold(l+1), "level %d", l)
	}
}

func TestLevelFromTotalMatchesThresholds(t *testing.T) {
	for l := 1; l <= 150; l++ {
		th := XPThreshold(l)
		require.Equal(t, l, LevelFromTotal(th), "threshold of %d", l)
		if l > 1 {
			require.Equal(t, l-1, LevelFromTotal(th-1), "threshold-1 of %d", l)
		}
	}
	assert.Equal(t, 1, LevelFromTotal(0))
	assert.Equal(t, 1, LevelFromTotal(35))
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(0)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 282, p.ToNext)
	assert.Equal(t, 0.0, p.Fraction)

	p = ProgressFor(141)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 141, p.ToNext)
	assert.InDelta(t, 0.5, p.Fraction, 1e-9)

	for total := 0; total < 5000; total += 7 {
		p := ProgressFor(total)
		require.GreaterOrEqual(t, p.Fraction, 0.0)
		require.Less(t, p.Fraction, 1.0)
		require.Positive(t, p.ToNext)
	}

	assert.Equal(t, ProgressFor(0), ProgressFor(-10))
}

func TestFormatLevelProgress(t *testing.T) {
	got := FormatLevelProgress(141)
	want := "⭐ Level 1\n[██████████░░░░░░░░░░] 50%\nXP: 141 | To level 2: 141 XP"
	assert.Equal(t, want, got)

	got = FormatLevelProgress(282)
	assert.Contains(t, got, "⭐ Level 2\n[░░░░░░░░░░░░░░░░░░░░] 0%")
	assert.Contains(t, got, "To level 3: 237 XP")
}

func TestCatalogAmounts(t *testing.T) {
	assert.Equal(t, 35, AwardFor(TaskCompletedEvent("high")))
	assert.Equal(t, 50, AwardFor(TaskCompletedEvent("critical")))
	assert.Equal(t, 15, AwardFor(EventTaskBeforeDeadline))
	assert.Equal(t, 0, AwardFor("unknown_event"))
	assert.Equal(t, -10, PenaltyFor(PenaltyHabitMissed))
	assert.Equal(t, -3, PenaltyFor(PenaltyInactivityDay))
	assert.Equal(t, -5, PenaltyFor("something_else"))
	assert.Equal(t, "achievement:ai_10", AchievementEvent("ai_10"))
	assert.Equal(t, "habit_streak_30", StreakEvent(30))

	for streak, bonus := range map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 100: 1000} {
		got, ok := MilestoneBonus(streak)
		assert.True(t, ok)
		assert.Equal(t, bonus, got)
		assert.Equal(t, bonus, AwardFor(StreakEvent(streak)))
	}
	_, ok := MilestoneBonus(8)
	assert.False(t, ok)

	assert.True(t, ValidDifficulty("hard"))
	assert.False(t, ValidDifficulty("epic"))
}
