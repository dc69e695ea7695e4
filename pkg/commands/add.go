package commands

import (
	"fmt"
	"strings"

	"errday/pkg/database"
	"errday/pkg/utils"
)

// AddTask captures a task and files it under quadrant, when given, with
// optional notes
func AddTask(store *database.Store, title, quadrant, notes string) (database.Task, error) {
	q := database.Unsorted
	if quadrant != "" {
		var err error
		if q, err = database.ParseQuadrant(quadrant); err != nil {
			return database.Task{}, err
		}
	}

	task, ok := store.AddTask(title)
	if !ok {
		return database.Task{}, database.ErrEmptyTitle
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		store.UpdateDescription(task.ID, notes)
	}
	if q != database.Unsorted {
		store.UpdateQuadrant(task.ID, q)
	}

	task, _ = store.Get(task.ID)
	utils.Log("Added task %s via command line", task.ID)
	return task, nil
}

// FindTask resolves a full task id or a unique prefix of one
func FindTask(store *database.Store, ref string) (database.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return database.Task{}, fmt.Errorf("empty task id: %w", database.ErrNotFound)
	}

	var matches []database.Task
	for _, t := range store.Tasks() {
		id := t.ID.String()
		if id == ref {
			return t, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return database.Task{}, fmt.Errorf("%s: %w", ref, database.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return database.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// ShortID is the id prefix shown by list
func ShortID(t database.Task) string {
	return t.ID.String()[:8]
}
