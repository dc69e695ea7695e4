package scheduler

import (
	"math"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	SlotMinutes   = 15
	SlotsPerDay   = MinutesPerDay / SlotMinutes
	SlotsPerHour  = 60 / SlotMinutes
)

// Span is a scheduled range projected onto its start day, in minutes from
// midnight. End is clamped to MinutesPerDay.
type Span struct {
	StartMinute int
	EndMinute   int
}

// MinuteOfDay is the wall-clock offset of t from midnight
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SlotOf is the index of the 15-minute slot containing t
func SlotOf(t time.Time) int {
	return MinuteOfDay(t) / SlotMinutes
}

// SpanOf projects start/end onto start's day. An end at or before the start
// (by wall clock) or on a later date runs to the end of the day.
func SpanOf(start, end time.Time) Span {
	s := MinuteOfDay(start)
	e := MinuteOfDay(end)
	if !sameDate(start, end) || e <= s {
		e = MinutesPerDay
	}
	return Span{StartMinute: s, EndMinute: e}
}

// Minutes is the rendered length of the span
func (s Span) Minutes() int {
	return s.EndMinute - s.StartMinute
}

// Placement is the vertical position and extent of a block as fractions of
// the day column height
type Placement struct {
	Top    float64
	Height float64
}

// Placement converts the span to fractions, enforcing a minimum extent so
// very short blocks stay grabbable. The block never extends past the day.
func (s Span) Placement(minExtentMinutes int) Placement {
	minutes := s.Minutes()
	if minutes < minExtentMinutes {
		minutes = minExtentMinutes
	}
	if s.StartMinute+minutes > MinutesPerDay {
		minutes = MinutesPerDay - s.StartMinute
	}
	return Placement{
		Top:    float64(s.StartMinute) / MinutesPerDay,
		Height: float64(minutes) / MinutesPerDay,
	}
}

// Scale maps the placement onto a column of the given total height
func (p Placement) Scale(total float64) (top, height float64) {
	return p.Top * total, p.Height * total
}

// Rows maps the placement onto a grid of whole rows. Every block covers at
// least one row.
func (p Placement) Rows(total int) (first, count int) {
	top, height := p.Scale(float64(total))
	first = int(math.Floor(top + 1e-9))
	last := int(math.Ceil(top+height-1e-9)) - 1
	if last < first {
		last = first
	}
	if last >= total {
		last = total - 1
	}
	if first >= total {
		first = total - 1
	}
	return first, last - first + 1
}
