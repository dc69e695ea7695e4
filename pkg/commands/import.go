package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"errday/pkg/database"
	"errday/pkg/utils"
)

// ImportTasks appends the tasks of a plain text checklist. "## Quadrant"
// headings file the lines below them; "- [x]" marks a task done. Lines that
// are neither are ignored.
func ImportTasks(store *database.Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	quadrant := database.Unsorted
	added := 0

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if heading, ok := strings.CutPrefix(line, "#"); ok {
			name := strings.TrimSpace(strings.TrimLeft(heading, "#"))
			q, err := database.ParseQuadrant(name)
			if err != nil {
				return added, fmt.Errorf("line %d: %w", lineNo, err)
			}
			quadrant = q
			continue
		}

		text, ok := strings.CutPrefix(line, "- ")
		if !ok {
			continue
		}
		done := false
		text = strings.TrimSpace(text)
		switch {
		case strings.HasPrefix(text, "[x]"), strings.HasPrefix(text, "[X]"):
			done = true
			text = text[3:]
		case strings.HasPrefix(text, "[ ]"):
			text = text[3:]
		}

		task, ok := store.AddTask(text)
		if !ok {
			utils.Log("Skipping empty task on line %d", lineNo)
			continue
		}
		if quadrant != database.Unsorted {
			store.UpdateQuadrant(task.ID, quadrant)
		}
		if done {
			store.ToggleStatus(task.ID)
		}
		added++
	}

	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read checklist: %w", err)
	}
	return added, nil
}

// ImportFile imports the checklist at path
func ImportFile(store *database.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := ImportTasks(store, f)
	utils.Log("Imported %d task(s) from %s", n, path)
	return n, err
}
