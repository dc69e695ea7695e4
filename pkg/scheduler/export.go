package scheduler

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	ics "github.com/arran4/golang-ical"

	"errday/pkg/database"
	"errday/pkg/utils"
)

const productID = "-//errday//errday//EN"

// EventUID is the stable iCalendar UID of a task
func EventUID(t database.Task) string {
	return t.ID.String() + "@errday"
}

// Exportable returns the tasks that become calendar events
func Exportable(tasks []database.Task) []database.Task {
	var out []database.Task
	for _, t := range tasks {
		if Eligible(t) && t.IsScheduled() {
			out = append(out, t)
		}
	}
	return out
}

// Calendar builds one VEVENT per eligible scheduled task, in any week
func Calendar(tasks []database.Task, now time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)

	stamp := now.UTC()
	for _, t := range Exportable(tasks) {
		start := *t.ScheduledStart
		end := *t.ScheduledEnd
		if !end.After(start) {
			// same rule as the grid: run to the end of the start day
			end = midnight(start).AddDate(0, 0, 1)
		}

		event := cal.AddEvent(EventUID(t))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(t.Title)
		event.SetDescription(eventDescription(t))
		if t.IsDone() {
			event.SetStatus(ics.ObjectStatusCompleted)
		}
	}
	return cal
}

func eventDescription(t database.Task) string {
	desc := "Quadrant: " + t.Quadrant.Label()
	if t.Description != "" {
		desc += "\n\n" + t.Description
	}
	return desc
}

// WriteICS serializes the calendar export of tasks to w
func WriteICS(w io.Writer, tasks []database.Task, now time.Time) error {
	if _, err := io.WriteString(w, Calendar(tasks, now).Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// ExportFile writes the calendar export to path
func ExportFile(path string, tasks []database.Task, now time.Time) error {
	var buf bytes.Buffer
	if err := WriteICS(&buf, tasks, now); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	utils.Log("Exported calendar to %s", path)
	return nil
}

// ExportFile is best-effort: failures are logged and reported to the caller,
// never retried
func (s *Scheduler) ExportFile(path string) error {
	err := ExportFile(path, s.store.Tasks(), s.now())
	if err != nil {
		utils.Log("Calendar export failed: %v", err)
	}
	return err
}
