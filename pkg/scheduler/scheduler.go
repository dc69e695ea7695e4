package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"errday/pkg/database"
	"errday/pkg/utils"
)

// TaskStore is the part of the store the scheduler reads and mutates
type TaskStore interface {
	Tasks() []database.Task
	Get(id uuid.UUID) (database.Task, bool)
	UpdateSchedule(id uuid.UUID, start, end *time.Time) bool
	UpdateTitle(id uuid.UUID, title string) bool
}

// Mode is the kind of gesture in progress
type Mode int

const (
	Idle Mode = iota
	Dragging
	Stretching
	Editing
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Stretching:
		return "stretching"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Gesture is the single interaction state. TaskID is meaningful for every
// mode but Idle.
type Gesture struct {
	Mode   Mode
	TaskID uuid.UUID
}

// Active reports whether a gesture on id is in progress
func (g Gesture) Active(id uuid.UUID) bool {
	return g.Mode != Idle && g.TaskID == id
}

// Slot addresses a 15-minute cell of the visible week
type Slot struct {
	Day   int
	Index int
}

// Valid reports whether the slot lies inside the grid
func (s Slot) Valid() bool {
	return s.Day >= 0 && s.Day < DaysPerWeek && s.Index >= 0 && s.Index < SlotsPerDay
}

// Scheduler projects the store onto a navigable week and turns gestures
// into schedule mutations. It keeps no persisted state of its own and is
// meant to be driven from a single event loop.
type Scheduler struct {
	store TaskStore
	opts  Options
	now   func() time.Time

	week    Week
	gesture Gesture
	target  *Slot

	// set while a store mutation issued by the scheduler is running, so
	// re-entrant handlers cannot start a second gesture mid-write
	applying bool
}

// New creates a scheduler showing the current week
func New(store TaskStore, opts Options) *Scheduler {
	return NewWithClock(store, opts, time.Now)
}

// NewWithClock is New with an explicit time source
func NewWithClock(store TaskStore, opts Options, now func() time.Time) *Scheduler {
	return &Scheduler{
		store: store,
		opts:  opts.withDefaults(),
		now:   now,
		week:  WeekOf(now()),
	}
}

// Week is the visible window
func (s *Scheduler) Week() Week {
	return s.week
}

// Now is the scheduler's current time
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Options returns the grid options in use
func (s *Scheduler) Options() Options {
	return s.opts
}

// Gesture is the current interaction state
func (s *Scheduler) Gesture() Gesture {
	return s.gesture
}

// DropTarget is the highlighted slot while dragging
func (s *Scheduler) DropTarget() (Slot, bool) {
	if s.target == nil {
		return Slot{}, false
	}
	return *s.target, true
}

// Grid builds the visible week from the store's current collection
func (s *Scheduler) Grid() Grid {
	return BuildGrid(s.store.Tasks(), s.week, s.opts)
}

// NextWeek moves the window forward seven days
func (s *Scheduler) NextWeek() Week {
	s.week = s.week.Next()
	return s.week
}

// PrevWeek moves the window back seven days
func (s *Scheduler) PrevWeek() Week {
	s.week = s.week.Prev()
	return s.week
}

// Today jumps back to the week containing the current date
func (s *Scheduler) Today() Week {
	s.week = WeekOf(s.now())
	return s.week
}

// BeginDrag picks up an eligible task from the unscheduled list or the grid
func (s *Scheduler) BeginDrag(id uuid.UUID) bool {
	if !s.idle() {
		return false
	}
	t, ok := s.store.Get(id)
	if !ok || !Eligible(t) {
		return false
	}
	s.gesture = Gesture{Mode: Dragging, TaskID: id}
	s.target = nil
	utils.Log("Drag started for task %s", id)
	return true
}

// DragOver highlights the slot under the pointer while dragging
func (s *Scheduler) DragOver(slot Slot) {
	if s.gesture.Mode != Dragging || s.applying {
		return
	}
	if !slot.Valid() {
		s.target = nil
		return
	}
	s.target = &slot
}

// Drop schedules the dragged task at the slot. Already scheduled tasks keep
// their duration, new ones get the default. Dropping outside the grid
// cancels the drag.
func (s *Scheduler) Drop(slot Slot) bool {
	if s.gesture.Mode != Dragging || s.applying {
		return false
	}
	id := s.gesture.TaskID
	s.reset()

	if !slot.Valid() {
		utils.Log("Drop outside the grid, drag of %s cancelled", id)
		return false
	}
	t, ok := s.store.Get(id)
	if !ok {
		return false
	}

	duration := s.opts.DefaultDuration
	if d := t.Duration(); d > 0 {
		duration = d
	}
	start := s.week.SlotTime(slot.Day, slot.Index)
	end := start.Add(duration)

	applied := s.apply(func() bool {
		return s.store.UpdateSchedule(id, &start, &end)
	})
	if applied {
		utils.Log("Dropped task %s at %s for %s", id, start.Format(time.RFC3339), duration)
	}
	return applied
}

// CancelDrag abandons the drag without mutating anything
func (s *Scheduler) CancelDrag() {
	if s.gesture.Mode == Dragging {
		s.reset()
	}
}

// BeginStretch grabs the resize handle of a scheduled block
func (s *Scheduler) BeginStretch(id uuid.UUID) bool {
	if !s.idle() {
		return false
	}
	t, ok := s.store.Get(id)
	if !ok || !Eligible(t) || !t.IsScheduled() {
		return false
	}
	s.gesture = Gesture{Mode: Stretching, TaskID: id}
	return true
}

// StretchOver recomputes the end from the slot the pointer entered. Only
// slots in the column of the task's start day count. The candidate end is
// the end of that slot; it is applied only when it is strictly after the
// task's start.
func (s *Scheduler) StretchOver(slot Slot) bool {
	if s.gesture.Mode != Stretching || s.applying || !slot.Valid() {
		return false
	}
	id := s.gesture.TaskID
	t, ok := s.store.Get(id)
	if !ok || !t.IsScheduled() {
		s.reset()
		return false
	}

	start := *t.ScheduledStart
	if day, ok := s.week.DayIndex(start); !ok || slot.Day != day {
		return false
	}
	end := s.week.SlotTime(slot.Day, slot.Index).Add(SlotMinutes * time.Minute)
	if !end.After(start) {
		return false
	}

	return s.apply(func() bool {
		return s.store.UpdateSchedule(id, &start, &end)
	})
}

// Release ends any pointer gesture. A stretch keeps its last valid end, a
// drag that was not dropped is cancelled.
func (s *Scheduler) Release() {
	switch s.gesture.Mode {
	case Dragging, Stretching:
		s.reset()
	}
}

// Unschedule clears both schedule fields of a task
func (s *Scheduler) Unschedule(id uuid.UUID) bool {
	if !s.idle() {
		return false
	}
	return s.apply(func() bool {
		return s.store.UpdateSchedule(id, nil, nil)
	})
}

// BeginEdit starts inline title editing of a task
func (s *Scheduler) BeginEdit(id uuid.UUID) (string, bool) {
	if !s.idle() {
		return "", false
	}
	t, ok := s.store.Get(id)
	if !ok {
		return "", false
	}
	s.gesture = Gesture{Mode: Editing, TaskID: id}
	return t.Title, true
}

// CommitEdit stores the edited title. A blank title leaves the old one.
func (s *Scheduler) CommitEdit(title string) bool {
	if s.gesture.Mode != Editing || s.applying {
		return false
	}
	id := s.gesture.TaskID
	s.reset()

	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return s.apply(func() bool {
		return s.store.UpdateTitle(id, title)
	})
}

// CancelEdit leaves editing mode without saving
func (s *Scheduler) CancelEdit() {
	if s.gesture.Mode == Editing {
		s.reset()
	}
}

func (s *Scheduler) idle() bool {
	return s.gesture.Mode == Idle && !s.applying
}

func (s *Scheduler) reset() {
	s.gesture = Gesture{}
	s.target = nil
}

func (s *Scheduler) apply(fn func() bool) bool {
	s.applying = true
	defer func() { s.applying = false }()
	return fn()
}
