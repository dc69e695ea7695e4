package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"errday/pkg/database"
)

func icsTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func TestWriteICS_Events(t *testing.T) {
	done := task("Ship release", database.DoFirst, ptr(at(12, 9, 0)), ptr(at(12, 10, 30)))
	done.Status = database.Done
	noted := task("Plan", database.Schedule, ptr(at(20, 14, 0)), ptr(at(20, 15, 0)))
	noted.Description = "bring slides"
	tasks := []database.Task{
		done,
		noted,
		task("Loose", database.Schedule, nil, nil),
		task("Handed off", database.Delegate, ptr(at(12, 9, 0)), ptr(at(12, 10, 0))),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tasks, testNow))
	out := buf.String()

	assert.Contains(t, out, "PRODID:-//errday//errday//EN")
	assert.Contains(t, out, "VERSION:2.0")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.NotContains(t, out, "Loose")
	assert.NotContains(t, out, "Handed off")

	assert.Contains(t, out, "UID:"+EventUID(done))
	assert.Contains(t, out, "DTSTART:"+icsTime(at(12, 9, 0)))
	assert.Contains(t, out, "DTEND:"+icsTime(at(12, 10, 30)))
	assert.Contains(t, out, "DTSTAMP:"+icsTime(testNow))
	assert.Contains(t, out, "STATUS:COMPLETED")
	assert.Equal(t, 1, strings.Count(out, "STATUS:"))
	assert.Contains(t, out, "Quadrant: Do First")
	assert.Contains(t, out, "Quadrant: Schedule")
	assert.Contains(t, out, "bring slides")
}

func TestExportable(t *testing.T) {
	tasks := []database.Task{
		task("Plan", database.Schedule, ptr(at(20, 14, 0)), ptr(at(20, 15, 0))),
		task("Loose", database.Schedule, nil, nil),
		task("Handed off", database.Delegate, ptr(at(12, 9, 0)), ptr(at(12, 10, 0))),
	}
	got := Exportable(tasks)
	require.Len(t, got, 1)
	assert.Equal(t, "Plan", got[0].Title)
	assert.Empty(t, Exportable(nil))
}

func TestWriteICS_InvertedEndRunsToMidnight(t *testing.T) {
	tk := task("Night shift", database.DoFirst, ptr(at(13, 22, 0)), ptr(at(13, 21, 0)))

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, []database.Task{tk}, testNow))
	assert.Contains(t, buf.String(), "DTEND:"+icsTime(at(14, 0, 0)))
}

func TestWriteICS_Parses(t *testing.T) {
	tk := task("Draft proposal", database.Schedule, ptr(at(11, 14, 0)), ptr(at(11, 15, 0)))

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, []database.Task{tk}, testNow))

	cal, err := ics.ParseCalendar(&buf)
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, tk.ID.String()+"@errday", ev.Id())
	assert.Equal(t, "Draft proposal", ev.GetProperty(ics.ComponentPropertySummary).Value)
	start, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(at(11, 14, 0)))
	end, err := ev.GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(at(11, 15, 0)))
}

func TestScheduler_ExportFile(t *testing.T) {
	s, store := newTestScheduler(t)
	tk := addTask(t, store, "Draft proposal", database.Schedule)
	require.True(t, s.BeginDrag(tk.ID))
	require.True(t, s.Drop(Slot{Day: 1, Index: 56}))

	path := filepath.Join(t.TempDir(), "out", "errday.ics")
	require.NoError(t, s.ExportFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "SUMMARY:Draft proposal")
	assert.Contains(t, out, "Quadrant: Schedule")
	assert.Contains(t, out, "DTSTART:"+icsTime(at(11, 14, 0)))
	assert.Contains(t, out, "DTEND:"+icsTime(at(11, 15, 0)))
}

func TestScheduler_ExportFileFailure(t *testing.T) {
	s, _ := newTestScheduler(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	assert.Error(t, s.ExportFile(filepath.Join(blocker, "errday.ics")))
}
