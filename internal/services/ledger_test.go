package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/pointers"
)

func TestLedgerAwardLevelsUp(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("ledger")

	res, err := h.ledger.Award(h.dbc, AwardInput{UserID: u.ID, EventType: "bonus", Amount: pointers.Int(300)})
	require.NoError(t, err)
	assert.Equal(t, 300, res.Amount)
	assert.Equal(t, 300, res.TotalXP)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)

	stored := h.reload(u.ID)
	assert.Equal(t, 300, stored.XP)
	assert.Equal(t, 300, stored.TotalXPEarned)
	assert.Equal(t, 2, stored.Level)
}

func TestLedgerPenaltyFloorsSpendableXPAndKeepsTotal(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("penalty")

	_, err := h.ledger.Award(h.dbc, AwardInput{UserID: u.ID, EventType: gamification.EventTaskCreated})
	require.NoError(t, err)

	res, err := h.ledger.Penalize(h.dbc, u.ID, gamification.PenaltyHabitMissed, "Missed habit: read")
	require.NoError(t, err)
	assert.Equal(t, -10, res.Amount)
	assert.Equal(t, 0, res.XP)
	assert.Equal(t, 5, res.TotalXP)
	assert.Equal(t, 1, res.Level)

	events, err := h.repos.XPEvents.ListByUser(h.dbc, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	var penalty bool
	for _, ev := range events {
		if ev.EventType == gamification.PenaltyHabitMissed {
			penalty = true
			assert.False(t, ev.CountsTowardTotal)
		}
	}
	assert.True(t, penalty)
}

func TestLedgerZeroAmountWritesNothing(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("zero")

	res, err := h.ledger.Award(h.dbc, AwardInput{UserID: u.ID, EventType: "unknown_event"})
	require.NoError(t, err)
	assert.Zero(t, res.Amount)

	events, err := h.repos.XPEvents.ListByUser(h.dbc, u.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLedgerLevelNeverDrops(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("sticky")
	require.NoError(t, h.repos.Users.UpdateFields(h.dbc, u.ID, map[string]any{"level": 5}))

	res, err := h.ledger.Award(h.dbc, AwardInput{UserID: u.ID, EventType: gamification.EventAISession})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Level)
	assert.False(t, res.LeveledUp)
}
