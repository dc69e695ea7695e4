package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"errday/pkg/database"
)

func task(title string, q database.Quadrant, start, end *time.Time) database.Task {
	t := database.NewTask(title, at(1, 8, 0))
	t.Quadrant = q
	t.ScheduledStart, t.ScheduledEnd = start, end
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestBuildGrid_Eligibility(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	tasks := []database.Task{
		task("do first", database.DoFirst, ptr(at(11, 9, 0)), ptr(at(11, 10, 0))),
		task("schedule", database.Schedule, nil, nil),
		task("delegated", database.Delegate, ptr(at(11, 9, 0)), ptr(at(11, 10, 0))),
		task("delegated loose", database.Delegate, nil, nil),
		task("deleted", database.Delete, nil, nil),
		task("inbox", database.Unsorted, ptr(at(12, 9, 0)), ptr(at(12, 10, 0))),
	}

	g := BuildGrid(tasks, week, DefaultOptions())

	require.Len(t, g.Unscheduled, 1)
	assert.Equal(t, "schedule", g.Unscheduled[0].Title)

	var placed []string
	for _, col := range g.Columns {
		for _, b := range col.Blocks {
			placed = append(placed, b.Task.Title)
		}
	}
	assert.Equal(t, []string{"do first"}, placed)
}

func TestBuildGrid_OnlyVisibleWeek(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	tasks := []database.Task{
		task("this week", database.Schedule, ptr(at(16, 20, 0)), ptr(at(16, 21, 0))),
		task("next week", database.Schedule, ptr(at(17, 9, 0)), ptr(at(17, 10, 0))),
		task("last week", database.Schedule, ptr(at(9, 9, 0)), ptr(at(9, 10, 0))),
	}

	g := BuildGrid(tasks, week, DefaultOptions())
	require.Len(t, g.Columns[6].Blocks, 1)
	assert.Equal(t, "this week", g.Columns[6].Blocks[0].Task.Title)
	assert.Empty(t, g.Unscheduled)

	g = BuildGrid(tasks, week.Next(), DefaultOptions())
	require.Len(t, g.Columns[0].Blocks, 1)
	assert.Equal(t, "next week", g.Columns[0].Blocks[0].Task.Title)
}

func TestBuildGrid_OverlapsKeptInStartOrder(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	tasks := []database.Task{
		task("late", database.DoFirst, ptr(at(12, 11, 0)), ptr(at(12, 12, 0))),
		task("early", database.Schedule, ptr(at(12, 10, 0)), ptr(at(12, 11, 30))),
		task("same start", database.Schedule, ptr(at(12, 11, 0)), ptr(at(12, 11, 15))),
	}

	g := BuildGrid(tasks, week, DefaultOptions())
	col := g.Columns[2]
	require.Len(t, col.Blocks, 3)
	assert.Equal(t, "early", col.Blocks[0].Task.Title)
	assert.Equal(t, "late", col.Blocks[1].Task.Title)
	assert.Equal(t, "same start", col.Blocks[2].Task.Title)

	at11 := g.BlocksAt(2, 44)
	assert.Len(t, at11, 3)
	assert.Empty(t, g.BlocksAt(2, 48))
	assert.Nil(t, g.BlocksAt(7, 0))
}

func TestBuildGrid_BlockGeometry(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	tk := task("wrap", database.DoFirst, ptr(at(13, 22, 0)), ptr(at(13, 21, 0)))

	g := BuildGrid([]database.Task{tk}, week, DefaultOptions())
	b, ok := g.Block(tk.ID)
	require.True(t, ok)
	assert.Equal(t, 3, b.Day)
	assert.Equal(t, Span{1320, MinutesPerDay}, b.Span)
	assert.InDelta(t, 2.0/24.0, b.Placement.Height, 1e-9)
	assert.Equal(t, SlotsPerDay-1, b.HandleSlot())
	assert.Equal(t, at(13, 0, 0), g.Columns[3].Date)
}

func TestBuildGrid_MinBlockOption(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	tk := task("tiny", database.DoFirst, ptr(at(12, 9, 0)), ptr(at(12, 9, 5)))

	g := BuildGrid([]database.Task{tk}, week, Options{MinBlockMinutes: 30})
	b, ok := g.Block(tk.ID)
	require.True(t, ok)
	assert.InDelta(t, 30.0/MinutesPerDay, b.Placement.Height, 1e-9)
	assert.Equal(t, 37, b.HandleSlot())
	assert.Len(t, g.BlocksAt(2, 37), 1)
}

func TestBlock_OnHandle(t *testing.T) {
	week := WeekOf(at(12, 9, 0))
	short := task("short", database.DoFirst, ptr(at(12, 9, 0)), ptr(at(12, 9, 15)))
	long := task("long", database.DoFirst, ptr(at(12, 14, 0)), ptr(at(12, 15, 0)))

	g := BuildGrid([]database.Task{short, long}, week, DefaultOptions())

	b, ok := g.Block(short.ID)
	require.True(t, ok)
	assert.Equal(t, 36, b.HandleSlot())
	assert.False(t, b.OnHandle(36), "a one-row block has no resize handle")

	b, ok = g.Block(long.ID)
	require.True(t, ok)
	assert.False(t, b.OnHandle(56))
	assert.True(t, b.OnHandle(59))
}
