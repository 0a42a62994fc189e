package gamification

import "time"

const streakLookbackDays = 365

// WeekdayBit maps a date to its schedule-mask bit, Monday = 0.
func WeekdayBit(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func Scheduled(mask int, day time.Time) bool {
	return mask&(1<<WeekdayBit(day)) != 0
}

// ComputeStreak walks back from logDate over scheduled days. counts reports
// whether a completed or frozen log exists for a day. logDate itself always
// counts; an earlier scheduled day without a log ends the walk. Unscheduled
// days are skipped.
func ComputeStreak(mask int, logDate time.Time, counts func(day time.Time) bool) int {
	streak, _ := StreakRun(mask, logDate, counts)
	return streak
}

// StreakRun is ComputeStreak plus the earliest day counted in the run. start
// is the zero time when the streak is 0.
func StreakRun(mask int, logDate time.Time, counts func(day time.Time) bool) (streak int, start time.Time) {
	check := logDate
	for {
		if Scheduled(mask, check) {
			if !counts(check) && check.Before(logDate) {
				return streak, start
			}
			streak++
			start = check
		}
		check = check.AddDate(0, 0, -1)
		if daysBetween(check, logDate) > streakLookbackDays {
			return streak, start
		}
	}
}

// StreakWindowStart is the earliest date ComputeStreak may inspect.
func StreakWindowStart(logDate time.Time) time.Time {
	return logDate.AddDate(0, 0, -(streakLookbackDays + 1))
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
