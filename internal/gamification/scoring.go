package gamification

import "math"

// ScoreInputs are the window statistics both composite scores draw from.
type ScoreInputs struct {
	WindowDays      int
	HabitLogsDone   int64
	HabitLogsTotal  int64
	TasksCreated    int64
	TasksCompleted  int64
	ActiveDays      int
	JournalEntries  int64
	AISessionEvents int64
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Discipline = 40% habit completion + 30% task completion + 30% active-day ratio.
func Discipline(in ScoreInputs) float64 {
	days := in.WindowDays
	if days <= 0 {
		days = 7
	}
	habit := clamp(ratio(in.HabitLogsDone, in.HabitLogsTotal)*100, 0, 100)
	task := clamp(ratio(in.TasksCompleted, in.TasksCreated)*100, 0, 100)
	consistency := clamp(float64(in.ActiveDays)/float64(days)*100, 0, 100)
	return clamp(habit*0.40+task*0.30+consistency*0.30, 0, 100)
}

// Growth = 40% journaling + 30% mentor sessions + 30% activity, each term capped at 100.
func Growth(in ScoreInputs) float64 {
	journal := math.Min(100, float64(in.JournalEntries)*20)
	ai := math.Min(100, float64(in.AISessionEvents)*15)
	activity := math.Min(100, float64(in.ActiveDays)*15)
	return clamp(journal*0.40+ai*0.30+activity*0.30, 0, 100)
}

// Smooth blends a fresh score into the stored one (30% old, 70% new).
func Smooth(old, fresh float64) float64 {
	return clamp(old*0.3+fresh*0.7, 0, 100)
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
