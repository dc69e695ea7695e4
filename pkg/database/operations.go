package database

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"errday/pkg/utils"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrEmptyTitle = errors.New("task title is empty")
)

// Snapshot is what subscribers receive after every applied mutation.
// Versions increase by one per mutation.
type Snapshot struct {
	Version uint64
	Tasks   []Task
}

// Store is the single owner of the task collection. Every mutation is a
// read-modify-persist sequence under one lock; subscribers are notified
// synchronously once the write-through has happened.
type Store struct {
	mu      sync.Mutex
	backend Backend
	tasks   []Task
	version uint64
	now     func() time.Time

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for created_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates a store and loads the backend's collection. Load failures
// degrade to an empty collection.
func Open(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		now:         time.Now,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.load()
	return s
}

func (s *Store) load() []Task {
	tasks, err := s.backend.Load()
	if err != nil {
		utils.Log("Could not load tasks from %s, starting empty: %v", s.backend.Location(), err)
		return []Task{}
	}

	loaded := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		loaded = append(loaded, t.normalize())
	}
	utils.Log("Loaded %d tasks from %s", len(loaded), s.backend.Location())
	return loaded
}

// Location describes where the collection is persisted
func (s *Store) Location() string {
	return s.backend.Location()
}

// Save writes the full collection to the backend
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(s.tasks)
}

// Tasks returns a copy of the collection in insertion order
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Get returns a copy of the task with the given id
func (s *Store) Get(id uuid.UUID) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].clone(), true
	}
	return Task{}, false
}

// Version is the number of mutations applied since Open
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// AddTask appends a new inbox task. Blank titles are rejected.
func (s *Store) AddTask(title string) (Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		utils.Log("Rejected task with empty title")
		return Task{}, false
	}

	var added Task
	s.mutate("add", func() bool {
		added = NewTask(title, s.now())
		s.tasks = append(s.tasks, added)
		return true
	})
	utils.Log("Added task %s: %s", added.ID, added.Title)
	return added.clone(), true
}

// UpdateQuadrant moves the task to another matrix quadrant
func (s *Store) UpdateQuadrant(id uuid.UUID, quadrant Quadrant) bool {
	return s.mutateTask("update quadrant", id, func(t *Task) bool {
		t.Quadrant = quadrant
		return true
	})
}

// ToggleStatus flips Todo and Done
func (s *Store) ToggleStatus(id uuid.UUID) bool {
	return s.mutateTask("toggle status", id, func(t *Task) bool {
		if t.Status == Done {
			t.Status = Todo
		} else {
			t.Status = Done
		}
		return true
	})
}

// UpdateTitle replaces the title. Blank titles are ignored.
func (s *Store) UpdateTitle(id uuid.UUID, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return s.mutateTask("update title", id, func(t *Task) bool {
		t.Title = title
		return true
	})
}

// UpdateDescription replaces the free-text notes
func (s *Store) UpdateDescription(id uuid.UUID, description string) bool {
	return s.mutateTask("update description", id, func(t *Task) bool {
		t.Description = strings.TrimSpace(description)
		return true
	})
}

// UpdateSchedule sets both schedule fields together. Passing two nils
// unschedules the task; a half pair is rejected.
func (s *Store) UpdateSchedule(id uuid.UUID, start, end *time.Time) bool {
	if (start == nil) != (end == nil) {
		utils.Log("Rejected half schedule for task %s", id)
		return false
	}
	return s.mutateTask("update schedule", id, func(t *Task) bool {
		if start == nil {
			t.ScheduledStart, t.ScheduledEnd = nil, nil
			return true
		}
		st, en := start.Round(0), end.Round(0)
		t.ScheduledStart, t.ScheduledEnd = &st, &en
		return true
	})
}

// DeleteTask removes the task entirely
func (s *Store) DeleteTask(id uuid.UUID) bool {
	return s.mutate("delete", func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return true
	})
}

// DeleteWhere removes every task match accepts in a single write and
// returns how many were removed
func (s *Store) DeleteWhere(match func(Task) bool) int {
	removed := 0
	s.mutate("delete where", func() bool {
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if match(t) {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		s.tasks = kept
		return removed > 0
	})
	return removed
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) mutateTask(op string, id uuid.UUID, fn func(t *Task) bool) bool {
	return s.mutate(op, func() bool {
		i := s.indexOf(id)
		if i < 0 {
			utils.Log("%s: no task %s", op, id)
			return false
		}
		return fn(&s.tasks[i])
	})
}

// mutate applies fn under the lock, persists when fn reports a change and
// notifies subscribers after releasing the lock. Save errors are logged and
// swallowed: the in-memory state stays authoritative for the session.
func (s *Store) mutate(op string, fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	if err := s.backend.Save(s.tasks); err != nil {
		utils.Log("%s: could not persist tasks to %s: %v", op, s.backend.Location(), err)
	}
	s.version++
	snap := Snapshot{Version: s.version, Tasks: cloneTasks(s.tasks)}
	s.mu.Unlock()

	s.notify(snap)
	return true
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
