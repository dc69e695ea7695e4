package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Quadrant is the Eisenhower-matrix classification of a task
type Quadrant int

const (
	Unsorted Quadrant = iota // Inbox
	DoFirst                  // Urgent & important
	Schedule                 // Important, not urgent
	Delegate                 // Urgent, not important
	Delete                   // Neither
)

var quadrantNames = map[Quadrant]string{
	Unsorted: "Unsorted",
	DoFirst:  "DoFirst",
	Schedule: "Schedule",
	Delegate: "Delegate",
	Delete:   "Delete",
}

var quadrantLabels = map[Quadrant]string{
	Unsorted: "Unsorted",
	DoFirst:  "Do First",
	Schedule: "Schedule",
	Delegate: "Delegate",
	Delete:   "Delete",
}

// Quadrants lists every quadrant in matrix order, inbox last
var Quadrants = []Quadrant{DoFirst, Schedule, Delegate, Delete, Unsorted}

func (q Quadrant) String() string {
	if name, ok := quadrantNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quadrant(%d)", int(q))
}

// Label returns the human readable name of the quadrant
func (q Quadrant) Label() string {
	if label, ok := quadrantLabels[q]; ok {
		return label
	}
	return q.String()
}

// ParseQuadrant accepts the persisted name or the label, case-insensitively
func ParseQuadrant(s string) (Quadrant, error) {
	for q, name := range quadrantNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, quadrantLabels[q]) {
			return q, nil
		}
	}
	return Unsorted, fmt.Errorf("unknown quadrant %q", s)
}

func (q Quadrant) MarshalJSON() ([]byte, error) {
	name, ok := quadrantNames[q]
	if !ok {
		return nil, fmt.Errorf("cannot marshal %s", q)
	}
	return json.Marshal(name)
}

func (q Quadrant) MarshalYAML() (interface{}, error) {
	return q.String(), nil
}

func (q *Quadrant) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for candidate, name := range quadrantNames {
		if s == name {
			*q = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown quadrant %q", s)
}

// Status is the completion state of a task
type Status int

const (
	Todo Status = iota
	Done
)

func (s Status) String() string {
	if s == Done {
		return "Done"
	}
	return "Todo"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch str {
	case "Todo":
		*s = Todo
	case "Done":
		*s = Done
	default:
		return fmt.Errorf("unknown status %q", str)
	}
	return nil
}

// Task is the single persisted entity
type Task struct {
	ID             uuid.UUID  `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty"`
	Quadrant       Quadrant   `json:"quadrant" yaml:"quadrant"`
	Status         Status     `json:"status" yaml:"status"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	ScheduledStart *time.Time `json:"scheduled_start" yaml:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end" yaml:"scheduled_end"`
}

// NewTask builds an unsorted, unscheduled todo
func NewTask(title string, now time.Time) Task {
	return Task{
		ID:        uuid.New(),
		Title:     title,
		Quadrant:  Unsorted,
		Status:    Todo,
		CreatedAt: now.Round(0),
	}
}

// IsScheduled reports whether both schedule fields are set
func (t Task) IsScheduled() bool {
	return t.ScheduledStart != nil && t.ScheduledEnd != nil
}

// IsDone reports whether the task is completed
func (t Task) IsDone() bool {
	return t.Status == Done
}

// Duration is the stored schedule length, zero when unscheduled or inverted
func (t Task) Duration() time.Duration {
	if !t.IsScheduled() {
		return 0
	}
	d := t.ScheduledEnd.Sub(*t.ScheduledStart)
	if d < 0 {
		return 0
	}
	return d
}

// clone copies the task so callers never share schedule pointers with the store
func (t Task) clone() Task {
	if t.ScheduledStart != nil {
		start := *t.ScheduledStart
		t.ScheduledStart = &start
	}
	if t.ScheduledEnd != nil {
		end := *t.ScheduledEnd
		t.ScheduledEnd = &end
	}
	return t
}

// normalize converts timestamps to local time and drops half schedules
func (t Task) normalize() Task {
	t.CreatedAt = t.CreatedAt.Local()
	if !t.IsScheduled() {
		t.ScheduledStart, t.ScheduledEnd = nil, nil
		return t
	}
	start := t.ScheduledStart.Local()
	end := t.ScheduledEnd.Local()
	t.ScheduledStart, t.ScheduledEnd = &start, &end
	return t
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.clone()
	}
	return out
}
