package ui

import (
	"sort"
	"strings"

	"errday/pkg/database"
)

// SortBy orders the inbox and matrix lists
type SortBy int

const (
	SortByCreated SortBy = iota
	SortByTitle
	SortByStatus
	SortBySchedule
	sortByCount
)

var sortByNames = []string{"created", "title", "status", "schedule"}

func (s SortBy) String() string {
	return sortByNames[s]
}

// GroupedTasks represents tasks sharing a quadrant
type GroupedTasks struct {
	Quadrant database.Quadrant
	Tasks    []database.Task
}

// SortTasks sorts tasks based on the current criteria. Ties keep the
// collection order.
func (m *Model) SortTasks(tasks []database.Task) []database.Task {
	sortedTasks := make([]database.Task, len(tasks))
	copy(sortedTasks, tasks)

	sort.SliceStable(sortedTasks, func(i, j int) bool {
		a, b := sortedTasks[i], sortedTasks[j]
		switch m.sortBy {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByStatus:
			return !a.IsDone() && b.IsDone() // Undone first
		case SortBySchedule:
			// scheduled first, earliest start first
			if a.IsScheduled() != b.IsScheduled() {
				return a.IsScheduled()
			}
			if a.IsScheduled() {
				return a.ScheduledStart.Before(*b.ScheduledStart)
			}
			return false
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	return sortedTasks
}

// visible drops done tasks when they are hidden
func (m *Model) visible(tasks []database.Task) []database.Task {
	if !m.hideDone {
		return tasks
	}
	var out []database.Task
	for _, t := range tasks {
		if !t.IsDone() {
			out = append(out, t)
		}
	}
	return out
}

// GroupTasks splits tasks by quadrant in matrix order, every quadrant
// present even when empty
func (m *Model) GroupTasks(tasks []database.Task) []GroupedTasks {
	groups := make(map[database.Quadrant][]database.Task)
	for _, t := range m.visible(tasks) {
		groups[t.Quadrant] = append(groups[t.Quadrant], t)
	}

	result := make([]GroupedTasks, 0, len(database.Quadrants))
	for _, q := range database.Quadrants {
		result = append(result, GroupedTasks{
			Quadrant: q,
			Tasks:    m.SortTasks(groups[q]),
		})
	}
	return result
}

// quadrantTasks is the sorted, filtered list shown for one quadrant
func (m *Model) quadrantTasks(q database.Quadrant) []database.Task {
	for _, g := range m.GroupTasks(m.tasks()) {
		if g.Quadrant == q {
			return g.Tasks
		}
	}
	return nil
}
