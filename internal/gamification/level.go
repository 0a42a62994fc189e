package gamification

import (
	"fmt"
	"math"
	"strings"
)

const progressBarWidth = 20

// XPThreshold is the cumulative XP needed to reach level.
func XPThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// LevelFromTotal returns the highest level whose threshold total has reached.
func LevelFromTotal(total int) int {
	level := 1
	for XPThreshold(level+1) <= total {
		level++
	}
	return level
}

type Progress struct {
	Level    int
	ToNext   int
	Fraction float64
}

func ProgressFor(total int) Progress {
	if total < 0 {
		total = 0
	}
	level := LevelFromTotal(total)
	cur := XPThreshold(level)
	next := XPThreshold(level + 1)
	span := next - cur
	in := total - cur

	var frac float64
	if span > 0 {
		frac = float64(in) / float64(span)
	}
	if frac < 0 {
		frac = 0
	}
	if frac >= 1 {
		frac = math.Nextafter(1, 0)
	}
	return Progress{Level: level, ToNext: span - in, Fraction: frac}
}

// FormatLevelProgress renders the three-line level card used in chat replies.
func FormatLevelProgress(total int) string {
	p := ProgressFor(total)
	filled := int(p.Fraction * progressBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	return fmt.Sprintf(
		"⭐ Level %d\n[%s] %.0f%%\nXP: %d | To level %d: %d XP",
		p.Level, bar, p.Fraction*100, total, p.Level+1, p.ToNext,
	)
}
