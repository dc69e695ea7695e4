package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"errday/pkg/database"
	"errday/pkg/scheduler"
)

// Export formats
const (
	FormatICS  = "ics"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTXT  = "txt"
)

// Formats lists every export type
var Formats = []string{FormatICS, FormatJSON, FormatYAML, FormatTXT}

// Export writes the tasks in the given format
func Export(w io.Writer, tasks []database.Task, format string, now time.Time) error {
	switch strings.ToLower(format) {
	case FormatICS:
		return scheduler.WriteICS(w, tasks, now)

	case FormatJSON:
		if tasks == nil {
			tasks = []database.Task{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("marshal tasks to YAML: %w", err)
		}
		return enc.Close()

	case FormatTXT:
		_, err := io.WriteString(w, checklist(tasks))
		return err

	default:
		return fmt.Errorf("unknown export type %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Exported reports how many entries an export of the tasks holds and what
// they are called. iCalendar only carries scheduled tasks.
func Exported(tasks []database.Task, format string) (int, string) {
	if strings.EqualFold(format, FormatICS) {
		return len(scheduler.Exportable(tasks)), "event(s)"
	}
	return len(tasks), "task(s)"
}

// ExportFile writes the export to path, creating its directory
func ExportFile(path string, tasks []database.Task, format string, now time.Time) error {
	var buf bytes.Buffer
	if err := Export(&buf, tasks, format, now); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// checklist renders the plain text form read back by ImportTasks: one
// "## Quadrant" heading per non-empty quadrant, one "- [ ]" line per task
func checklist(tasks []database.Task) string {
	groups := make(map[database.Quadrant][]database.Task)
	for _, t := range tasks {
		groups[t.Quadrant] = append(groups[t.Quadrant], t)
	}

	var sections []string
	for _, q := range database.Quadrants {
		group := groups[q]
		if len(group) == 0 {
			continue
		}
		lines := []string{"## " + q.Label()}
		for _, t := range group {
			status := " "
			if t.IsDone() {
				status = "x"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s", status, t.Title))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}
