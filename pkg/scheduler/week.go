package scheduler

import (
	"fmt"
	"time"
)

// DaysPerWeek is the number of columns in the grid
const DaysPerWeek = 7

// Week is a Monday-start, seven day window in local wall-clock time
type Week struct {
	Start time.Time // Monday 00:00
}

// WeekOf returns the week containing t
func WeekOf(t time.Time) Week {
	day := midnight(t)
	daysFromMonday := (int(day.Weekday()) + 6) % 7
	return Week{Start: day.AddDate(0, 0, -daysFromMonday)}
}

// Next moves the window seven days forward
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, DaysPerWeek)}
}

// Prev moves the window seven days back
func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -DaysPerWeek)}
}

// Day returns midnight of the i-th day (0 = Monday)
func (w Week) Day(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// Days lists the dates of the week
func (w Week) Days() [DaysPerWeek]time.Time {
	var days [DaysPerWeek]time.Time
	for i := range days {
		days[i] = w.Day(i)
	}
	return days
}

// DayIndex returns the column of t's calendar date, if it falls in the week
func (w Week) DayIndex(t time.Time) (int, bool) {
	for i := 0; i < DaysPerWeek; i++ {
		if sameDate(w.Day(i), t) {
			return i, true
		}
	}
	return 0, false
}

// SlotTime is the wall-clock start of a slot on the given day
func (w Week) SlotTime(day, slot int) time.Time {
	d := w.Day(day)
	minutes := slot * SlotMinutes
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, d.Location())
}

// Label renders the week range, e.g. "Jun 10 - Jun 16, 2024"
func (w Week) Label() string {
	end := w.Day(DaysPerWeek - 1)
	if w.Start.Year() != end.Year() {
		return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2"), end.Format("Jan 2, 2006"))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
