package scheduler

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"errday/pkg/database"
)

// Options tune the grid and gesture defaults
type Options struct {
	DefaultDuration time.Duration // length of a freshly dropped task
	MinBlockMinutes int           // minimum rendered extent
}

// DefaultOptions are a one hour drop and a one slot minimum block
func DefaultOptions() Options {
	return Options{
		DefaultDuration: time.Hour,
		MinBlockMinutes: SlotMinutes,
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = time.Hour
	}
	if o.MinBlockMinutes <= 0 {
		o.MinBlockMinutes = SlotMinutes
	}
	return o
}

// Block is a scheduled task positioned in a day column
type Block struct {
	Task      database.Task
	Day       int
	Span      Span
	Placement Placement
}

// Column is one day of the grid
type Column struct {
	Date   time.Time
	Blocks []Block
}

// Grid is the projection of the task collection onto a week
type Grid struct {
	Week        Week
	Columns     [DaysPerWeek]Column
	Unscheduled []database.Task
}

// Eligible reports whether a task takes part in the calendar at all
func Eligible(t database.Task) bool {
	return t.Quadrant == database.DoFirst || t.Quadrant == database.Schedule
}

// BuildGrid places every eligible scheduled task whose start falls in the
// week and lists eligible unscheduled tasks. Overlapping blocks are kept
// side by side in start order; nothing is resolved.
func BuildGrid(tasks []database.Task, week Week, opts Options) Grid {
	opts = opts.withDefaults()
	g := Grid{Week: week}
	for i := range g.Columns {
		g.Columns[i].Date = week.Day(i)
	}

	for _, t := range tasks {
		if !Eligible(t) {
			continue
		}
		if !t.IsScheduled() {
			g.Unscheduled = append(g.Unscheduled, t)
			continue
		}
		day, ok := week.DayIndex(*t.ScheduledStart)
		if !ok {
			continue
		}
		span := SpanOf(*t.ScheduledStart, *t.ScheduledEnd)
		g.Columns[day].Blocks = append(g.Columns[day].Blocks, Block{
			Task:      t,
			Day:       day,
			Span:      span,
			Placement: span.Placement(opts.MinBlockMinutes),
		})
	}

	for i := range g.Columns {
		blocks := g.Columns[i].Blocks
		sort.SliceStable(blocks, func(a, b int) bool {
			return blocks[a].Span.StartMinute < blocks[b].Span.StartMinute
		})
	}
	return g
}

// BlocksAt returns the blocks of a day that cover the slot
func (g Grid) BlocksAt(day, slot int) []Block {
	if day < 0 || day >= DaysPerWeek {
		return nil
	}
	var out []Block
	for _, b := range g.Columns[day].Blocks {
		if b.coversSlot(slot) {
			out = append(out, b)
		}
	}
	return out
}

// Block returns the rendered block of a task, if it is in this week
func (g Grid) Block(id uuid.UUID) (Block, bool) {
	for _, col := range g.Columns {
		for _, b := range col.Blocks {
			if b.Task.ID == id {
				return b, true
			}
		}
	}
	return Block{}, false
}

// coversSlot uses the rendered extent, so minimum-height blocks are
// grabbable over their whole visible area
func (b Block) coversSlot(slot int) bool {
	first, count := b.Placement.Rows(SlotsPerDay)
	return slot >= first && slot < first+count
}

// HandleSlot is the slot holding the block's resize handle
func (b Block) HandleSlot() int {
	first, count := b.Placement.Rows(SlotsPerDay)
	return first + count - 1
}

// OnHandle reports whether the slot is the drawn resize handle. A block one
// row tall has none; the whole block picks it up.
func (b Block) OnHandle(slot int) bool {
	_, count := b.Placement.Rows(SlotsPerDay)
	return count > 1 && slot == b.HandleSlot()
}
