package clock

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fake is deterministic and test-friendly.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

const DateLayout = "2006-01-02"

// DefaultZone is used whenever a stored zone name cannot be loaded, and for
// new users. Set once at startup through SetDefaultZone.
var DefaultZone = "Europe/Moscow"

// zones caches loaded locations by IANA name. Unknown names are not cached.
var zones sync.Map

func loadZone(name string) (*time.Location, error) {
	if v, ok := zones.Load(name); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	v, _ := zones.LoadOrStore(name, loc)
	return v.(*time.Location), nil
}

// SetDefaultZone replaces DefaultZone when name is a loadable IANA zone.
func SetDefaultZone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := loadZone(name); err != nil {
		return fmt.Errorf("default timezone %q: %w", name, err)
	}
	DefaultZone = name
	return nil
}

// Location resolves an IANA zone name, falling back to DefaultZone and then UTC.
func Location(name string) *time.Location {
	if name != "" {
		if loc, err := loadZone(name); err == nil {
			return loc
		}
	}
	if loc, err := loadZone(DefaultZone); err == nil {
		return loc
	}
	return time.UTC
}

// LocalDate is the calendar date of t in the named zone, formatted YYYY-MM-DD.
func LocalDate(t time.Time, zone string) string {
	return t.In(Location(zone)).Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}
