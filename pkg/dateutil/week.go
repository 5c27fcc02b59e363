package dateutil

import (
	"fmt"
	"time"
)

// Week is an ISO 8601 week: weeks start on Monday and week 1 is the week
// holding the first Thursday of the year.
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week of t as seen in loc.
func WeekOf(t time.Time, loc *time.Location) Week {
	year, week := t.In(loc).ISOWeek()
	return Week{Year: year, Number: week}
}

// Key formats the week as YYYY-Www, e.g. 2026-W03.
func (w Week) Key() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Number)
}

func (w Week) String() string {
	return w.Key()
}

// ParseWeekKey is the inverse of Week.Key.
func ParseWeekKey(key string) (Week, error) {
	var w Week
	if _, err := fmt.Sscanf(key, "%04d-W%02d", &w.Year, &w.Number); err != nil {
		return Week{}, fmt.Errorf("invalid week key %q: %w", key, err)
	}

	if w.Number < 1 || w.Number > 53 || w.Key() != key {
		return Week{}, fmt.Errorf("invalid week key %q", key)
	}

	return w, nil
}

// Start returns Monday 00:00 of the week in loc.
func (w Week) Start(loc *time.Location) time.Time {
	// January 4th always belongs to week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	firstMonday := jan4.AddDate(0, 0, -offset)

	return firstMonday.AddDate(0, 0, (w.Number-1)*7)
}

// End returns the last second of the week (Sunday 23:59:59) in loc.
func (w Week) End(loc *time.Location) time.Time {
	return w.Start(loc).AddDate(0, 0, 7).Add(-time.Second)
}

// BeginningOfWeek returns Monday 00:00 of the ISO week holding t in loc.
func BeginningOfWeek(t time.Time, loc *time.Location) time.Time {
	return WeekOf(t, loc).Start(loc)
}

// MonthKey formats the month of t as YYYY-MM in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
