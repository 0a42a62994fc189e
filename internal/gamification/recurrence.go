package gamification

import (
	"time"

	"github.com/yungbote/mentor-backend/internal/domain/planner"
)

// NextOccurrence is the schedule of the task spawned after a recurring one completes.
type NextOccurrence struct {
	Deadline  time.Time
	Recurring bool
}

// NextDeadline derives the successor deadline from base (the completed task's
// deadline, or today). Monthly is a fixed 30-day offset. on_date yields
// fixedDate and switches recurrence off for the successor. ok is false for an
// unknown type or an on_date rule without a date.
func NextDeadline(recurrenceType string, base time.Time, fixedDate *time.Time) (NextOccurrence, bool) {
	switch recurrenceType {
	case planner.RecurrenceDaily:
		return NextOccurrence{Deadline: base.AddDate(0, 0, 1), Recurring: true}, true
	case planner.RecurrenceWeekly:
		return NextOccurrence{Deadline: base.AddDate(0, 0, 7), Recurring: true}, true
	case planner.RecurrenceMonthly:
		return NextOccurrence{Deadline: base.AddDate(0, 0, 30), Recurring: true}, true
	case planner.RecurrenceOnDate:
		if fixedDate == nil {
			return NextOccurrence{}, false
		}
		return NextOccurrence{Deadline: *fixedDate, Recurring: false}, true
	default:
		return NextOccurrence{}, false
	}
}
