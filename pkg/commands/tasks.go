package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"errday/pkg/database"
)

// ListOptions filters the list output
type ListOptions struct {
	Quadrant string
	HideDone bool
}

var headingStyle = lipgloss.NewStyle().Bold(true)

// ListTasks prints the tasks grouped by quadrant in matrix order
func ListTasks(w io.Writer, tasks []database.Task, opts ListOptions) error {
	only := database.Quadrant(-1)
	if opts.Quadrant != "" {
		q, err := database.ParseQuadrant(opts.Quadrant)
		if err != nil {
			return err
		}
		only = q
	}

	groups := make(map[database.Quadrant][]database.Task)
	for _, t := range tasks {
		if opts.HideDone && t.IsDone() {
			continue
		}
		groups[t.Quadrant] = append(groups[t.Quadrant], t)
	}

	first := true
	for _, q := range database.Quadrants {
		if only >= 0 && q != only {
			continue
		}
		group := groups[q]
		if len(group) == 0 && only < 0 {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", q.Label(), len(group))))
		for _, t := range group {
			fmt.Fprintln(w, listLine(t))
		}
	}
	if first {
		fmt.Fprintln(w, "No tasks.")
	}
	return nil
}

func listLine(t database.Task) string {
	status := "[ ]"
	if t.IsDone() {
		status = "[x]"
	}
	line := fmt.Sprintf("  %s %s  %s", status, ShortID(t), t.Title)
	if t.IsScheduled() {
		line += "  @ " + t.ScheduledStart.Format("Mon Jan 2 15:04") + "-" + t.ScheduledEnd.Format("15:04")
	}
	return line
}

// SortTask moves a task into a quadrant
func SortTask(store *database.Store, ref, quadrant string) (database.Task, error) {
	q, err := database.ParseQuadrant(quadrant)
	if err != nil {
		return database.Task{}, err
	}
	t, err := FindTask(store, ref)
	if err != nil {
		return database.Task{}, err
	}
	store.UpdateQuadrant(t.ID, q)
	t, _ = store.Get(t.ID)
	return t, nil
}

// ToggleDone flips a task between todo and done
func ToggleDone(store *database.Store, ref string) (database.Task, error) {
	t, err := FindTask(store, ref)
	if err != nil {
		return database.Task{}, err
	}
	store.ToggleStatus(t.ID)
	t, _ = store.Get(t.ID)
	return t, nil
}

// DeleteTask removes a task for good
func DeleteTask(store *database.Store, ref string) (database.Task, error) {
	t, err := FindTask(store, ref)
	if err != nil {
		return database.Task{}, err
	}
	store.DeleteTask(t.ID)
	return t, nil
}

// ScheduleTask places a task at start for the given duration
func ScheduleTask(store *database.Store, ref string, start time.Time, duration time.Duration) (database.Task, error) {
	if duration <= 0 {
		return database.Task{}, errors.New("duration must be positive")
	}
	t, err := FindTask(store, ref)
	if err != nil {
		return database.Task{}, err
	}
	end := start.Add(duration)
	store.UpdateSchedule(t.ID, &start, &end)
	t, _ = store.Get(t.ID)
	return t, nil
}

// UnscheduleTask clears both schedule fields
func UnscheduleTask(store *database.Store, ref string) (database.Task, error) {
	t, err := FindTask(store, ref)
	if err != nil {
		return database.Task{}, err
	}
	store.UpdateSchedule(t.ID, nil, nil)
	t, _ = store.Get(t.ID)
	return t, nil
}

var startLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseStart reads a local start time. A bare "15:04" means that time on
// the day of now.
func ParseStart(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if clock, err := time.Parse("15:04", s); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse start %q, use YYYY-MM-DD HH:MM or HH:MM", s)
}
