package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBackend keeps the last saved collection and can be told to fail
type memoryBackend struct {
	saved   []Task
	saves   int
	loadErr error
	saveErr error
}

func (m *memoryBackend) Load() ([]Task, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return cloneTasks(m.saved), nil
}

func (m *memoryBackend) Save(tasks []Task) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = cloneTasks(tasks)
	return nil
}

func (m *memoryBackend) Location() string { return "memory" }

func newTestStore(t *testing.T) (*Store, *FileBackend) {
	t.Helper()
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)
	return Open(backend), backend
}

func requireSameTasks(t *testing.T, want, got []Task) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID, "task %d id", i)
		assert.Equal(t, w.Title, g.Title, "task %d title", i)
		assert.Equal(t, w.Description, g.Description, "task %d description", i)
		assert.Equal(t, w.Quadrant, g.Quadrant, "task %d quadrant", i)
		assert.Equal(t, w.Status, g.Status, "task %d status", i)
		assert.True(t, w.CreatedAt.Equal(g.CreatedAt), "task %d created_at", i)
		assert.Equal(t, w.IsScheduled(), g.IsScheduled(), "task %d scheduled", i)
		if w.IsScheduled() && g.IsScheduled() {
			assert.True(t, w.ScheduledStart.Equal(*g.ScheduledStart), "task %d start", i)
			assert.True(t, w.ScheduledEnd.Equal(*g.ScheduledEnd), "task %d end", i)
		}
	}
}

func TestAddTask_Defaults(t *testing.T) {
	store, _ := newTestStore(t)

	task, ok := store.AddTask("  Buy milk ")
	require.True(t, ok)

	tasks := store.Tasks()
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, task.ID, got.ID)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, Unsorted, got.Quadrant)
	assert.Equal(t, Todo, got.Status)
	assert.Nil(t, got.ScheduledStart)
	assert.Nil(t, got.ScheduledEnd)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAddTask_UniqueIDs(t *testing.T) {
	store, _ := newTestStore(t)

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		task, ok := store.AddTask("task")
		require.True(t, ok)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, store.Tasks(), 50)
}

func TestAddTask_RejectsBlankTitle(t *testing.T) {
	backend := &memoryBackend{}
	store := Open(backend)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, ok := store.AddTask(title)
		assert.False(t, ok, "title %q", title)
	}
	assert.Empty(t, store.Tasks())
	assert.Zero(t, backend.saves)
}

func TestMutations_UnknownIDIsNoop(t *testing.T) {
	backend := &memoryBackend{}
	store := Open(backend)
	_, ok := store.AddTask("keep me")
	require.True(t, ok)
	before := store.Tasks()
	savesBefore := backend.saves
	versionBefore := store.Version()

	notified := 0
	defer store.Subscribe(func(Snapshot) { notified++ })()

	missing := uuid.New()
	start := time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)

	assert.False(t, store.UpdateQuadrant(missing, DoFirst))
	assert.False(t, store.ToggleStatus(missing))
	assert.False(t, store.DeleteTask(missing))
	assert.False(t, store.UpdateSchedule(missing, &start, &end))
	assert.False(t, store.UpdateSchedule(missing, nil, nil))
	assert.False(t, store.UpdateTitle(missing, "new"))
	assert.False(t, store.UpdateDescription(missing, "notes"))

	requireSameTasks(t, before, store.Tasks())
	assert.Equal(t, savesBefore, backend.saves)
	assert.Equal(t, versionBefore, store.Version())
	assert.Zero(t, notified)
}

func TestUpdateQuadrant(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Plan quarter")

	require.True(t, store.UpdateQuadrant(task.ID, Schedule))

	got, ok := store.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, Schedule, got.Quadrant)
}

func TestToggleStatus(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Water plants")

	require.True(t, store.ToggleStatus(task.ID))
	got, _ := store.Get(task.ID)
	assert.Equal(t, Done, got.Status)

	require.True(t, store.ToggleStatus(task.ID))
	got, _ = store.Get(task.ID)
	assert.Equal(t, Todo, got.Status)
}

func TestDeleteTask_PreservesOrder(t *testing.T) {
	store, _ := newTestStore(t)
	a, _ := store.AddTask("a")
	b, _ := store.AddTask("b")
	c, _ := store.AddTask("c")

	require.True(t, store.DeleteTask(b.ID))

	tasks := store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, a.ID, tasks[0].ID)
	assert.Equal(t, c.ID, tasks[1].ID)
	assert.False(t, store.DeleteTask(b.ID))
}

func TestUpdateSchedule_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Deep work")
	require.True(t, store.UpdateQuadrant(task.ID, DoFirst))
	require.True(t, store.UpdateDescription(task.ID, "no meetings"))
	before, _ := store.Get(task.ID)

	start := time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, 6, 11, 10, 30, 0, 0, time.Local)
	require.True(t, store.UpdateSchedule(task.ID, &start, &end))

	scheduled, _ := store.Get(task.ID)
	require.True(t, scheduled.IsScheduled())
	assert.True(t, start.Equal(*scheduled.ScheduledStart))
	assert.True(t, end.Equal(*scheduled.ScheduledEnd))
	assert.Equal(t, 90*time.Minute, scheduled.Duration())

	require.True(t, store.UpdateSchedule(task.ID, nil, nil))
	after, _ := store.Get(task.ID)
	requireSameTasks(t, []Task{before}, []Task{after})
}

func TestUpdateSchedule_RejectsHalfPair(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Half")
	start := time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)

	assert.False(t, store.UpdateSchedule(task.ID, &start, nil))
	assert.False(t, store.UpdateSchedule(task.ID, nil, &start))

	got, _ := store.Get(task.ID)
	assert.False(t, got.IsScheduled())
	assert.Nil(t, got.ScheduledStart)
}

func TestUpdateSchedule_CallerCannotAliasStoredTimes(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Alias")
	start := time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	require.True(t, store.UpdateSchedule(task.ID, &start, &end))

	start = start.Add(5 * time.Hour)
	got, _ := store.Get(task.ID)
	assert.Equal(t, 9, got.ScheduledStart.Hour())

	*got.ScheduledEnd = got.ScheduledEnd.Add(time.Hour)
	again, _ := store.Get(task.ID)
	assert.Equal(t, 10, again.ScheduledEnd.Hour())
}

func TestUpdateTitle(t *testing.T) {
	store, _ := newTestStore(t)
	task, _ := store.AddTask("Old")

	assert.False(t, store.UpdateTitle(task.ID, "  "))
	require.True(t, store.UpdateTitle(task.ID, " New "))

	got, _ := store.Get(task.ID)
	assert.Equal(t, "New", got.Title)
}

func TestDeleteWhere(t *testing.T) {
	store, _ := newTestStore(t)
	a, _ := store.AddTask("a")
	b, _ := store.AddTask("b")
	store.ToggleStatus(a.ID)

	removed := store.DeleteWhere(func(t Task) bool { return t.IsDone() })
	assert.Equal(t, 1, removed)

	tasks := store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)
	assert.Zero(t, store.DeleteWhere(func(t Task) bool { return t.IsDone() }))
}

func TestPersistLoadRoundTrip(t *testing.T) {
	store, backend := newTestStore(t)
	a, _ := store.AddTask("Draft proposal")
	b, _ := store.AddTask("Review budget")
	c, _ := store.AddTask("Book flights")

	start := time.Date(2024, 6, 11, 14, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	store.UpdateQuadrant(a.ID, Schedule)
	store.UpdateSchedule(a.ID, &start, &end)
	store.UpdateQuadrant(b.ID, Delegate)
	store.ToggleStatus(c.ID)
	store.UpdateDescription(c.ID, "window seat")

	reloaded := Open(backend)
	requireSameTasks(t, store.Tasks(), reloaded.Tasks())
}

func TestLoad_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	data := `[
  {
    "id": "0f8fad5b-d9cb-469f-a165-70867728950e",
    "title": "Imported",
    "description": null,
    "quadrant": "DoFirst",
    "status": "Done",
    "created_at": "2024-06-10T08:00:00+02:00",
    "scheduled_start": "2024-06-11T09:00:00+02:00",
    "scheduled_end": "2024-06-11T10:00:00+02:00"
  },
  {
    "id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
    "title": "Half scheduled",
    "quadrant": "Unsorted",
    "status": "Todo",
    "created_at": "2024-06-10T08:00:00Z",
    "scheduled_start": "2024-06-11T09:00:00Z",
    "scheduled_end": null
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	tasks := Open(backend).Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Imported", tasks[0].Title)
	assert.Equal(t, DoFirst, tasks[0].Quadrant)
	assert.Equal(t, Done, tasks[0].Status)
	assert.Equal(t, time.Hour, tasks[0].Duration())
	assert.Equal(t, time.Local, tasks[0].ScheduledStart.Location())
	assert.False(t, tasks[1].IsScheduled())
	assert.Nil(t, tasks[1].ScheduledStart)
}

func TestLoad_MissingOrCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()

	missing, err := NewFileBackend(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, Open(missing).Tasks())

	corruptPath := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0644))
	corrupt, err := NewFileBackend(corruptPath)
	require.NoError(t, err)
	store := Open(corrupt)
	assert.Empty(t, store.Tasks())

	// the store stays usable and overwrites the corrupt file
	_, ok := store.AddTask("fresh start")
	require.True(t, ok)
	assert.Len(t, Open(corrupt).Tasks(), 1)
}

func TestLoad_UnknownQuadrantDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"0f8fad5b-d9cb-469f-a165-70867728950e","title":"x","quadrant":"Someday","status":"Todo","created_at":"2024-06-10T08:00:00Z"}]`), 0644))
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	assert.Empty(t, Open(backend).Tasks())
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	backend := &memoryBackend{saveErr: errors.New("disk full")}
	store := Open(backend)

	task, ok := store.AddTask("Survives")
	require.True(t, ok)
	require.True(t, store.UpdateQuadrant(task.ID, DoFirst))

	got, ok := store.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, DoFirst, got.Quadrant)
	assert.Equal(t, 2, backend.saves)
	assert.Error(t, store.Save())
}

func TestLoadFailureIsEmpty(t *testing.T) {
	store := Open(&memoryBackend{loadErr: errors.New("permission denied")})
	assert.Empty(t, store.Tasks())
}

func TestSubscribe_NotifiedAfterPersist(t *testing.T) {
	backend := &memoryBackend{}
	store := Open(backend)

	var snaps []Snapshot
	var savesAtNotify []int
	cancel := store.Subscribe(func(s Snapshot) {
		snaps = append(snaps, s)
		savesAtNotify = append(savesAtNotify, backend.saves)
	})

	task, _ := store.AddTask("Notify")
	store.UpdateQuadrant(task.ID, Schedule)

	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(1), snaps[0].Version)
	assert.Equal(t, uint64(2), snaps[1].Version)
	assert.Equal(t, []int{1, 2}, savesAtNotify)
	assert.Equal(t, Schedule, snaps[1].Tasks[0].Quadrant)

	// subscribers may read the store from the callback
	store.Subscribe(func(Snapshot) { _ = store.Tasks() })

	cancel()
	store.ToggleStatus(task.ID)
	assert.Len(t, snaps, 2)
}

func TestTasksReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddTask("Original")

	tasks := store.Tasks()
	tasks[0].Title = "Changed"

	assert.Equal(t, "Original", store.Tasks()[0].Title)
}

func TestParseQuadrant(t *testing.T) {
	tests := []struct {
		in   string
		want Quadrant
		err  bool
	}{
		{"DoFirst", DoFirst, false},
		{"do first", DoFirst, false},
		{"schedule", Schedule, false},
		{"DELEGATE", Delegate, false},
		{"Delete", Delete, false},
		{"unsorted", Unsorted, false},
		{"someday", Unsorted, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuadrant(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
