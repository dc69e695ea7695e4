package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"errday/pkg/database"
	"errday/pkg/scheduler"
	"errday/pkg/utils"
)

// matrixQuadrants are the four matrix boxes, left to right, top to bottom
var matrixQuadrants = [4]database.Quadrant{
	database.DoFirst, database.Schedule,
	database.Delegate, database.Delete,
}

const (
	headerRows   = 4 // tab bar, blank, week label, day names
	footerRows   = 3 // status, help bar, error
	timeColWidth = 6
	panelWidth   = 28
	minColWidth  = 8
)

// calendarLayout is the screen geometry of the week grid. View and the
// mouse hit testing both derive it from the window size.
type calendarLayout struct {
	gridTop   int
	rows      int
	colWidth  int
	showPanel bool
	panelX    int
}

func (m Model) calendarLayout() calendarLayout {
	l := calendarLayout{gridTop: headerRows}
	l.rows = clamp(m.height-headerRows-footerRows, 4, scheduler.SlotsPerDay)

	avail := m.width - timeColWidth
	if avail-panelWidth-1 >= scheduler.DaysPerWeek*minColWidth {
		l.showPanel = true
		avail -= panelWidth + 1
	}
	l.colWidth = maxInt(avail/scheduler.DaysPerWeek, 3)
	l.panelX = timeColWidth + scheduler.DaysPerWeek*l.colWidth + 1
	return l
}

// slotAt maps a screen cell to a grid slot
func (l calendarLayout) slotAt(x, y, scrollTop int) (scheduler.Slot, bool) {
	outside := scheduler.Slot{Day: -1, Index: -1}
	if y < l.gridTop || y >= l.gridTop+l.rows {
		return outside, false
	}
	if x < timeColWidth || x >= timeColWidth+scheduler.DaysPerWeek*l.colWidth {
		return outside, false
	}
	slot := scheduler.Slot{
		Day:   (x - timeColWidth) / l.colWidth,
		Index: scrollTop + y - l.gridTop,
	}
	return slot, slot.Valid()
}

// panelItemAt maps a screen cell to an entry of the unscheduled list. The
// list header shares the day names row.
func (l calendarLayout) panelItemAt(x, y int) (int, bool) {
	if !l.showPanel || x < l.panelX {
		return 0, false
	}
	idx := y - l.gridTop
	return idx, idx >= 0
}

// ensureCursorVisible scrolls the grid window to keep the cursor slot on
// screen
func (m *Model) ensureCursorVisible() {
	rows := m.calendarLayout().rows
	if m.cursorSlot < m.scrollTop {
		m.scrollTop = m.cursorSlot
	}
	if m.cursorSlot >= m.scrollTop+rows {
		m.scrollTop = m.cursorSlot - rows + 1
	}
	m.scrollTop = clamp(m.scrollTop, 0, scheduler.SlotsPerDay-rows)
}

// moveCalendarCursor moves the grid cursor, crossing into the neighbouring
// week at the edges, and feeds the move to an active gesture
func (m *Model) moveCalendarCursor(days, slots int) {
	m.cursorSlot = clamp(m.cursorSlot+slots, 0, scheduler.SlotsPerDay-1)
	m.cursorDay += days
	if m.cursorDay < 0 {
		m.sched.PrevWeek()
		m.cursorDay = scheduler.DaysPerWeek - 1
	} else if m.cursorDay >= scheduler.DaysPerWeek {
		m.sched.NextWeek()
		m.cursorDay = 0
	}
	m.ensureCursorVisible()
	m.pointerEntered(m.cursorCell())
}

func (m Model) cursorCell() scheduler.Slot {
	return scheduler.Slot{Day: m.cursorDay, Index: m.cursorSlot}
}

// pointerEntered forwards the slot under the cursor or mouse to the gesture
// in progress
func (m *Model) pointerEntered(slot scheduler.Slot) {
	switch m.sched.Gesture().Mode {
	case scheduler.Dragging:
		m.sched.DragOver(slot)
	case scheduler.Stretching:
		m.sched.StretchOver(slot)
	}
}

// blockAt returns the block drawn on top at the slot
func (m Model) blockAt(slot scheduler.Slot) (scheduler.Block, bool) {
	blocks := m.sched.Grid().BlocksAt(slot.Day, slot.Index)
	if len(blocks) == 0 {
		return scheduler.Block{}, false
	}
	return blocks[len(blocks)-1], true
}

// selectedTask is the task the cursor points at in the current view
func (m *Model) selectedTask() (database.Task, bool) {
	switch m.viewMode {
	case InboxView:
		tasks := m.quadrantTasks(database.Unsorted)
		if m.inboxCursor < len(tasks) {
			return tasks[m.inboxCursor], true
		}
	case MatrixView:
		tasks := m.quadrantTasks(matrixQuadrants[m.matrixSelected])
		if c := m.matrixCursor[m.matrixSelected]; c < len(tasks) {
			return tasks[c], true
		}
	case CalendarView:
		if m.focus == focusUnscheduled {
			unscheduled := m.sched.Grid().Unscheduled
			if m.unscheduledCursor < len(unscheduled) {
				return unscheduled[m.unscheduledCursor], true
			}
			return database.Task{}, false
		}
		if b, ok := m.blockAt(m.cursorCell()); ok {
			return b.Task, true
		}
	}
	return database.Task{}, false
}

// clampCursors keeps list cursors inside lists that may have shrunk
func (m *Model) clampCursors() {
	m.inboxCursor = clamp(m.inboxCursor, 0, len(m.quadrantTasks(database.Unsorted))-1)
	for i, q := range matrixQuadrants {
		m.matrixCursor[i] = clamp(m.matrixCursor[i], 0, len(m.quadrantTasks(q))-1)
	}
	m.unscheduledCursor = clamp(m.unscheduledCursor, 0, len(m.sched.Grid().Unscheduled)-1)
}

// moveListCursor moves the cursor of the list view in focus
func (m *Model) moveListCursor(delta int) {
	switch m.viewMode {
	case InboxView:
		m.inboxCursor += delta
	case MatrixView:
		sel := m.matrixSelected
		next := m.matrixCursor[sel] + delta
		count := len(m.quadrantTasks(matrixQuadrants[sel]))
		// walk off the top or bottom into the box above or below
		switch {
		case next < 0 && sel >= 2:
			m.matrixSelected = sel - 2
			m.matrixCursor[m.matrixSelected] = len(m.quadrantTasks(matrixQuadrants[sel-2])) - 1
		case next >= count && sel < 2:
			m.matrixSelected = sel + 2
			m.matrixCursor[m.matrixSelected] = 0
		default:
			m.matrixCursor[sel] = next
		}
	case CalendarView:
		m.unscheduledCursor += delta
	}
	m.clampCursors()
}

// focusNextInput cycles through the add form inputs
func (m *Model) focusNextInput() {
	m.activeInput = (m.activeInput + 1) % 2
	if m.activeInput == 0 {
		m.titleInput.Focus()
		m.descInput.Blur()
	} else {
		m.titleInput.Blur()
		m.descInput.Focus()
	}
}

// startEdit opens the single-field title or notes form
func (m *Model) startEdit(mode InputMode, t database.Task) {
	m.resetInputs()
	m.mode = mode
	m.editingID = t.ID
	if mode == NotesMode {
		m.titleInput.Blur()
		m.descInput.Focus()
		m.descInput.SetValue(t.Description)
		m.activeInput = 1
		return
	}
	m.titleInput.SetValue(t.Title)
}

// submitForm processes the form data based on the current mode
func (m *Model) submitForm() {
	title := strings.TrimSpace(m.titleInput.Value())
	desc := strings.TrimSpace(m.descInput.Value())

	switch m.mode {
	case AddMode:
		task, ok := m.store.AddTask(title)
		if !ok {
			m.err = errors.New("title cannot be empty")
			return
		}
		if desc != "" {
			m.store.UpdateDescription(task.ID, desc)
		}
		// new tasks land where they were captured
		switch m.viewMode {
		case MatrixView:
			m.store.UpdateQuadrant(task.ID, matrixQuadrants[m.matrixSelected])
		case CalendarView:
			m.store.UpdateQuadrant(task.ID, database.Schedule)
		}
		m.status = fmt.Sprintf("Added %q", task.Title)

	case EditMode:
		if m.sched.Gesture().Mode == scheduler.Editing {
			m.sched.CommitEdit(title)
		} else if title != "" {
			m.store.UpdateTitle(m.editingID, title)
		}

	case NotesMode:
		m.store.UpdateDescription(m.editingID, desc)
	}

	// Reset state
	m.err = nil
	m.mode = NormalMode
	m.resetInputs()
	m.editingID = uuid.Nil
	m.clampCursors()
}

// cancelForm leaves add/edit without saving
func (m *Model) cancelForm() {
	if m.sched.Gesture().Mode == scheduler.Editing {
		m.sched.CancelEdit()
	}
	m.mode = NormalMode
	m.resetInputs()
	m.editingID = uuid.Nil
	m.err = nil
}

// exportCalendar writes the configured .ics file
func (m *Model) exportCalendar() {
	if err := m.sched.ExportFile(m.config.ExportFile); err != nil {
		m.err = err
		return
	}
	m.status = "Exported calendar to " + m.config.ExportFile
	utils.Log("Calendar exported from UI")
}

func clamp(value, lower, upper int) int {
	if upper < lower {
		return lower
	}
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
