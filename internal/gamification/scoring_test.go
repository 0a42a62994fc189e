package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscipline(t *testing.T) {
	in := ScoreInputs{WindowDays: 7, HabitLogsDone: 5, HabitLogsTotal: 10, TasksCreated: 4, TasksCompleted: 2, ActiveDays: 7}
	// 0.4*50 + 0.3*50 + 0.3*100
	assert.InDelta(t, 65.0, Discipline(in), 1e-9)
}

func TestGrowth(t *testing.T) {
	in := ScoreInputs{JournalEntries: 2, AISessionEvents: 4, ActiveDays: 3}
	// 0.4*40 + 0.3*60 + 0.3*45
	assert.InDelta(t, 47.5, Growth(in), 1e-9)
}

func TestScoreBounds(t *testing.T) {
	cases := []ScoreInputs{
		{},
		{WindowDays: 7},
		{WindowDays: 7, HabitLogsDone: 1e6, HabitLogsTotal: 1, TasksCreated: 1, TasksCompleted: 1e6, ActiveDays: 1e6},
		{WindowDays: 1, JournalEntries: 1e9, AISessionEvents: 1e9, ActiveDays: 1e9},
		{WindowDays: -3, ActiveDays: -4},
	}
	for _, in := range cases {
		d := Discipline(in)
		g := Growth(in)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 100.0)
		assert.GreaterOrEqual(t, g, 0.0)
		assert.LessOrEqual(t, g, 100.0)
	}
}

func TestSmooth(t *testing.T) {
	assert.InDelta(t, 0.3*50+0.7*100, Smooth(50, 100), 1e-9)
	assert.Equal(t, 85.0, Round1(Smooth(50, 100)))
	assert.Equal(t, 33.3, Round1(33.33))
}
