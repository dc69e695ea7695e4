package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"errday/pkg/database"
	"errday/pkg/scheduler"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		sb.WriteString(m.tabBar())
		sb.WriteString("\n\n")
		switch m.viewMode {
		case InboxView:
			sb.WriteString(m.renderInbox())
		case MatrixView:
			sb.WriteString(m.renderMatrix())
		case CalendarView:
			sb.WriteString(m.renderCalendar())
		}

	case AddMode:
		sb.WriteString(m.titleBadge(" Add Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm(true))

	case EditMode:
		sb.WriteString(m.titleBadge(" Edit Title ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm(false))

	case NotesMode:
		sb.WriteString(m.titleBadge(" Edit Notes ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Notes:\n")
		sb.WriteString(m.descInput.View())

	case DeleteConfirmMode:
		sb.WriteString(m.titleBadge(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if t, ok := m.store.Get(m.editingID); ok {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", t.Title))
			if t.Description != "" {
				sb.WriteString(fmt.Sprintf("Notes: %s\n", t.Description))
			}
			sb.WriteString(fmt.Sprintf("Quadrant: %s\n", t.Quadrant.Label()))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case HelpViewMode:
		sb.WriteString(m.renderHelp())
	}

	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBadge(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

// tabBar renders the app title and the three views on one line
func (m Model) tabBar() string {
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor)).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor)).
		Padding(0, 1)

	parts := []string{m.titleBadge(" errday ", m.styles.AccentColor)}
	for i, name := range viewNames {
		label := name
		if ViewMode(i) == InboxView {
			label = fmt.Sprintf("%s (%d)", name, len(m.quadrantTasks(database.Unsorted)))
		}
		if ViewMode(i) == m.viewMode {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// statusLine shows errors, the last action result and list settings
func (m Model) statusLine() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render("Error: " + m.err.Error())
	}
	info := m.status
	if info == "" && m.mode == NormalMode {
		info = fmt.Sprintf("sorted by %s", m.sortBy)
		if m.hideDone {
			info += " | done hidden"
		}
		if m.viewMode == CalendarView {
			if g := m.sched.Gesture(); g.Mode != scheduler.Idle {
				info += " | " + g.Mode.String()
			}
		}
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.BorderColor)).Render(info)
}

// taskLine renders a task as a checklist row
func (m Model) taskLine(t database.Task, selected bool, width int) string {
	status := "[ ]"
	if t.IsDone() {
		status = "[x]"
	}
	text := fmt.Sprintf("%s %s", status, t.Title)
	if t.IsScheduled() {
		text += " @ " + t.ScheduledStart.Format("Mon 15:04")
	}
	text = truncate(text, width)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))
	if t.IsDone() {
		style = style.Foreground(lipgloss.Color(m.styles.DoneColor)).Strikethrough(true)
	}
	if selected {
		style = style.
			Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
			Background(lipgloss.Color(m.styles.SelectedBgColor)).
			Bold(true)
	}
	return style.Render(text)
}

// renderInbox lists unsorted tasks waiting to be triaged
func (m Model) renderInbox() string {
	var sb strings.Builder
	tasks := m.quadrantTasks(database.Unsorted)

	if len(tasks) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.BorderColor)).
			Render(fmt.Sprintf("Inbox is empty. Press %s to capture a task.", m.keyMap.AddTask.Help().Key)))
		sb.WriteString("\n")
		return sb.String()
	}

	noteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.BorderColor))
	width := maxInt(m.width-4, 20)
	for i, t := range tasks {
		sb.WriteString(m.taskLine(t, i == m.inboxCursor, width))
		sb.WriteString("\n")
		if t.Description != "" {
			sb.WriteString("    ")
			sb.WriteString(noteStyle.Render(truncate(t.Description, width-4)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m Model) quadrantColor(q database.Quadrant) string {
	switch q {
	case database.DoFirst:
		return m.styles.DoFirstColor
	case database.Schedule:
		return m.styles.ScheduleColor
	case database.Delegate:
		return m.styles.DelegateColor
	case database.Delete:
		return m.styles.DeleteColor
	default:
		return m.styles.BorderColor
	}
}

// renderMatrix draws the four quadrants as a two by two grid of boxes
func (m Model) renderMatrix() string {
	boxWidth := maxInt((m.width-6)/2, 20)
	boxHeight := maxInt((m.height-10)/2, 3)

	boxes := make([]string, len(matrixQuadrants))
	for i, q := range matrixQuadrants {
		selected := i == m.matrixSelected
		border := m.styles.BorderColor
		if selected {
			border = m.styles.AccentColor
		}

		var sb strings.Builder
		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.quadrantColor(q))).Render(q.Label()))
		sb.WriteString("\n")

		tasks := m.quadrantTasks(q)
		// keep the cursor row inside the box
		first := 0
		if c := m.matrixCursor[i]; c >= boxHeight-1 {
			first = c - boxHeight + 2
		}
		for j := first; j < len(tasks) && j-first < boxHeight-1; j++ {
			sb.WriteString(m.taskLine(tasks[j], selected && j == m.matrixCursor[i], boxWidth-2))
			sb.WriteString("\n")
		}

		boxes[i] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Width(boxWidth).
			Height(boxHeight).
			Render(strings.TrimRight(sb.String(), "\n"))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, boxes[0], " ", boxes[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, boxes[2], " ", boxes[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderCalendar renders the week grid and the unscheduled list. Its row
// layout must match calendarLayout.
func (m Model) renderCalendar() string {
	var sb strings.Builder
	l := m.calendarLayout()
	grid := m.sched.Grid()
	week := grid.Week
	now := m.sched.Now()

	// Week header
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(week.Label())
	if g := m.sched.Gesture(); g.Mode != scheduler.Idle {
		if t, ok := m.store.Get(g.TaskID); ok {
			header += lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).
				Render(fmt.Sprintf("  %s %q", g.Mode, t.Title))
		}
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	// Day names
	sb.WriteString(strings.Repeat(" ", timeColWidth))
	for d, date := range week.Days() {
		style := lipgloss.NewStyle().Width(l.colWidth).Bold(true).Foreground(lipgloss.Color(m.styles.NormalTextColor))
		if sameDay(date, now) {
			style = style.Foreground(lipgloss.Color(m.styles.AccentColor)).Underline(true)
		}
		if d == m.cursorDay && m.focus == focusGrid {
			style = style.Foreground(lipgloss.Color(m.styles.SelectedTextColor))
		}
		sb.WriteString(style.Render(truncate(date.Format("Mon 2"), l.colWidth-1)))
	}
	panel := m.unscheduledLines(grid, l)
	if l.showPanel {
		sb.WriteString(" ")
		sb.WriteString(panel[0])
	}
	sb.WriteString("\n")

	ghost := m.dragGhost()
	timeStyle := lipgloss.NewStyle().Width(timeColWidth).Foreground(lipgloss.Color(m.styles.BorderColor))
	for r := 0; r < l.rows; r++ {
		slot := m.scrollTop + r
		label := ""
		if slot%scheduler.SlotsPerHour == 0 {
			label = fmt.Sprintf("%02d:00", slot/scheduler.SlotsPerHour)
		}
		sb.WriteString(timeStyle.Render(label))

		for d := 0; d < scheduler.DaysPerWeek; d++ {
			sb.WriteString(m.renderCell(grid, scheduler.Slot{Day: d, Index: slot}, l.colWidth, ghost))
		}
		if l.showPanel && r+1 < len(panel) {
			sb.WriteString(" ")
			sb.WriteString(panel[r+1])
		}
		if r < l.rows-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ghostRows is the preview of where a dragged task would land
type ghostRows struct {
	day, first, count int
	ok                bool
}

func (g ghostRows) covers(slot scheduler.Slot) bool {
	return g.ok && slot.Day == g.day && slot.Index >= g.first && slot.Index < g.first+g.count
}

func (m Model) dragGhost() ghostRows {
	g := m.sched.Gesture()
	target, ok := m.sched.DropTarget()
	if g.Mode != scheduler.Dragging || !ok {
		return ghostRows{}
	}
	t, ok := m.store.Get(g.TaskID)
	if !ok {
		return ghostRows{}
	}
	duration := t.Duration()
	if duration <= 0 {
		duration = m.sched.Options().DefaultDuration
	}
	slots := int((duration + scheduler.SlotMinutes*time.Minute - 1) / (scheduler.SlotMinutes * time.Minute))
	return ghostRows{
		day:   target.Day,
		first: target.Index,
		count: clamp(slots, 1, scheduler.SlotsPerDay-target.Index),
		ok:    true,
	}
}

// renderCell draws one slot of one day. Overlapping blocks split the cell
// width between them.
func (m Model) renderCell(grid scheduler.Grid, slot scheduler.Slot, width int, ghost ghostRows) string {
	cursor := m.focus == focusGrid && slot.Day == m.cursorDay && slot.Index == m.cursorSlot
	blocks := grid.BlocksAt(slot.Day, slot.Index)

	if len(blocks) == 0 {
		style := lipgloss.NewStyle().Width(width).Foreground(lipgloss.Color(m.styles.GridLineColor))
		text := ""
		if slot.Index%scheduler.SlotsPerHour == 0 {
			text = strings.Repeat("·", width-1)
		}
		if ghost.covers(slot) {
			style = style.Background(lipgloss.Color(m.styles.DropTargetColor))
		}
		if cursor {
			style = style.Background(lipgloss.Color(m.styles.SelectedBgColor))
		}
		return style.Render(text)
	}

	var sb strings.Builder
	each := width / len(blocks)
	for i, b := range blocks {
		w := each
		if i == len(blocks)-1 {
			w = width - each*(len(blocks)-1)
		}
		first, _ := b.Placement.Rows(scheduler.SlotsPerDay)

		text := ""
		switch {
		case slot.Index == first:
			text = b.Task.Title
		case b.OnHandle(slot.Index):
			text = strings.Repeat("═", maxInt(w-1, 0))
		case slot.Index == first+1:
			text = b.Task.ScheduledStart.Format("15:04") + "-" + b.Task.ScheduledEnd.Format("15:04")
		}

		style := lipgloss.NewStyle().
			Width(w).
			Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
			Background(lipgloss.Color(m.quadrantColor(b.Task.Quadrant)))
		if b.Task.IsDone() {
			style = style.Foreground(lipgloss.Color(m.styles.DoneColor)).Strikethrough(true)
		}
		if m.sched.Gesture().Active(b.Task.ID) {
			style = style.Bold(true).Reverse(true)
		}
		if ghost.covers(slot) {
			style = style.Background(lipgloss.Color(m.styles.DropTargetColor))
		}
		if cursor {
			style = style.Background(lipgloss.Color(m.styles.SelectedBgColor))
		}
		sb.WriteString(style.Render(truncate(text, w-1)))
	}
	return sb.String()
}

// unscheduledLines renders the panel header and one line per eligible
// unscheduled task
func (m Model) unscheduledLines(grid scheduler.Grid, l calendarLayout) []string {
	if !l.showPanel {
		return nil
	}
	focused := m.focus == focusUnscheduled
	headerColor := m.styles.BorderColor
	if focused {
		headerColor = m.styles.AccentColor
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(headerColor)).
			Render(fmt.Sprintf("Unscheduled (%d)", len(grid.Unscheduled))),
	}
	for i, t := range grid.Unscheduled {
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(m.quadrantColor(t.Quadrant))).Render("▌")
		lines = append(lines, marker+m.taskLine(t, focused && i == m.unscheduledCursor, panelWidth-2))
	}
	return lines
}

// renderForm renders the input form for adding or editing tasks
func (m Model) renderForm(withNotes bool) string {
	var sb strings.Builder

	sb.WriteString("Title:\n")
	sb.WriteString(m.titleInput.View())

	if withNotes {
		sb.WriteString("\n\n")
		sb.WriteString("Notes:\n")
		sb.WriteString(m.descInput.View())
	}

	return sb.String()
}

// renderHelp lists every binding grouped by where it applies
func (m Model) renderHelp() string {
	var sb strings.Builder

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))

	section := func(title string, bindings ...key.Binding) {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
		sb.WriteString("\n\n")
		for _, b := range bindings {
			sb.WriteString(fmt.Sprintf("%s: %s\n", descStyle.Render(b.Help().Desc), keyStyle.Render(b.Help().Key)))
		}
		sb.WriteString("\n")
	}

	km := m.keyMap
	section("General", km.QuitApp, km.ShowHelp, km.NextView, km.PrevView, km.InboxView, km.MatrixView, km.CalendarView)
	section("Tasks", km.AddTask, km.EditTask, km.EditNotes, km.DeleteTask, km.ToggleStatus, km.ToggleHideDone, km.ToggleSortBy)
	section("Sorting", km.SortDoFirst, km.SortSchedule, km.SortDelegate, km.SortDelete, km.SortUnsorted)
	section("Calendar", km.PrevWeek, km.NextWeek, km.JumpToToday, km.ToggleFocus, km.MoveTask, km.StretchTask,
		km.Unschedule, km.ExportCalendar, km.HourUp, km.HourDown)

	return strings.TrimRight(sb.String(), "\n")
}

// helpBar renders a status bar with the actions available right now
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor)).
		Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	km := m.keyMap
	switch m.mode {
	case NormalMode:
		switch {
		case m.viewMode == CalendarView && m.sched.Gesture().Mode == scheduler.Dragging:
			addAction("arrows", "move")
			addBinding(km.Confirm, "drop")
			addBinding(km.Cancel, "cancel")
		case m.viewMode == CalendarView && m.sched.Gesture().Mode == scheduler.Stretching:
			addAction("arrows", "resize")
			addBinding(km.Confirm, "done")
		case m.viewMode == CalendarView:
			addBinding(km.MoveTask, "move")
			addBinding(km.StretchTask, "resize")
			addBinding(km.Unschedule, "unschedule")
			addBinding(km.ToggleFocus, "focus")
			addAction(km.PrevWeek.Help().Key+km.NextWeek.Help().Key, "week")
			addBinding(km.ExportCalendar, "export")
		default:
			addBinding(km.AddTask, "add")
			addBinding(km.EditTask, "edit")
			addBinding(km.DeleteTask, "del")
			addBinding(km.ToggleStatus, "done")
			addAction("1-4/0", "sort")
		}
		addBinding(km.NextView, "view")
		addBinding(km.ShowHelp, "help")
		addBinding(km.QuitApp, "quit")

	case AddMode:
		addAction("tab", "next field")
		addBinding(km.Confirm, "save")
		addBinding(km.Cancel, "cancel")

	case EditMode, NotesMode:
		addBinding(km.Confirm, "save")
		addBinding(km.Cancel, "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case HelpViewMode:
		addBinding(km.Cancel, "back")
		addBinding(km.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
