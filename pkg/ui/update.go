package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"errday/pkg/database"
	"errday/pkg/scheduler"
	"errday/pkg/utils"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureCursorVisible()
		return m, nil

	case tea.MouseMsg:
		if m.mode == NormalMode && m.viewMode == CalendarView {
			m.handleCalendarMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			return m.updateNormal(msg)

		case AddMode:
			switch {
			case key.Matches(msg, m.keyMap.Cancel):
				m.cancelForm()
				return m, nil
			case msg.Type == tea.KeyTab || msg.Type == tea.KeyShiftTab:
				m.focusNextInput()
				return m, nil
			case key.Matches(msg, m.keyMap.Confirm):
				// Submit on enter from the last field
				if m.activeInput == 1 {
					m.submitForm()
				} else {
					m.focusNextInput()
				}
				return m, nil
			}
			if m.activeInput == 0 {
				m.titleInput, cmd = m.titleInput.Update(msg)
			} else {
				m.descInput, cmd = m.descInput.Update(msg)
			}
			return m, cmd

		case EditMode, NotesMode:
			switch {
			case key.Matches(msg, m.keyMap.Cancel):
				m.cancelForm()
				return m, nil
			case key.Matches(msg, m.keyMap.Confirm):
				m.submitForm()
				return m, nil
			}
			if m.mode == EditMode {
				m.titleInput, cmd = m.titleInput.Update(msg)
			} else {
				m.descInput, cmd = m.descInput.Update(msg)
			}
			return m, cmd

		case DeleteConfirmMode:
			// Handle delete confirmation
			switch msg.String() {
			case "y", "Y":
				utils.Log("Deleting task ID: %s", m.editingID)
				m.store.DeleteTask(m.editingID)
				m.mode = NormalMode
				m.editingID = uuid.Nil
				m.clampCursors()

			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingID = uuid.Nil
			}

		case HelpViewMode:
			if key.Matches(msg, m.keyMap.Cancel, m.keyMap.ShowHelp) {
				m.mode = NormalMode
			} else if key.Matches(msg, m.keyMap.QuitApp) {
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

// updateNormal handles keys outside of forms and dialogs
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	gesture := m.sched.Gesture().Mode

	// a gesture in progress owns the keyboard until it ends
	if m.viewMode == CalendarView && gesture != scheduler.Idle {
		m.updateGesture(msg, gesture)
		return m, nil
	}

	m.status = ""
	m.err = nil
	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.NextView):
		m.setView((m.viewMode + 1) % 3)

	case key.Matches(msg, m.keyMap.PrevView):
		m.setView((m.viewMode + 2) % 3)

	case key.Matches(msg, m.keyMap.InboxView):
		m.setView(InboxView)

	case key.Matches(msg, m.keyMap.MatrixView):
		m.setView(MatrixView)

	case key.Matches(msg, m.keyMap.CalendarView):
		m.setView(CalendarView)

	case key.Matches(msg, m.keyMap.AddTask):
		m.mode = AddMode
		m.resetInputs()

	case key.Matches(msg, m.keyMap.ToggleHideDone):
		m.hideDone = !m.hideDone
		m.clampCursors()

	case key.Matches(msg, m.keyMap.ToggleSortBy):
		m.sortBy = (m.sortBy + 1) % sortByCount

	case m.viewMode == CalendarView:
		m.updateCalendar(msg)

	default:
		m.updateList(msg)
	}

	return m, nil
}

func (m *Model) setView(v ViewMode) {
	m.viewMode = v
	m.focus = focusGrid
	m.err = nil
	m.clampCursors()
}

// updateList handles the inbox and matrix lists
func (m *Model) updateList(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keyMap.MoveUp):
		m.moveListCursor(-1)

	case key.Matches(msg, m.keyMap.MoveDown):
		m.moveListCursor(1)

	case key.Matches(msg, m.keyMap.MoveLeft) && m.viewMode == MatrixView:
		if m.matrixSelected%2 == 1 {
			m.matrixSelected--
		}

	case key.Matches(msg, m.keyMap.MoveRight) && m.viewMode == MatrixView:
		if m.matrixSelected%2 == 0 {
			m.matrixSelected++
		}

	default:
		m.updateTaskKeys(msg)
	}
}

// updateTaskKeys applies the actions shared by every view to the selected
// task
func (m *Model) updateTaskKeys(msg tea.KeyMsg) {
	t, ok := m.selectedTask()
	if !ok {
		return
	}

	switch {
	case key.Matches(msg, m.keyMap.ToggleStatus):
		m.store.ToggleStatus(t.ID)

	case key.Matches(msg, m.keyMap.EditTask):
		m.startEdit(EditMode, t)

	case key.Matches(msg, m.keyMap.EditNotes):
		m.startEdit(NotesMode, t)

	case key.Matches(msg, m.keyMap.DeleteTask):
		m.mode = DeleteConfirmMode
		m.editingID = t.ID

	case key.Matches(msg, m.keyMap.SortDoFirst):
		m.store.UpdateQuadrant(t.ID, database.DoFirst)

	case key.Matches(msg, m.keyMap.SortSchedule):
		m.store.UpdateQuadrant(t.ID, database.Schedule)

	case key.Matches(msg, m.keyMap.SortDelegate):
		m.store.UpdateQuadrant(t.ID, database.Delegate)

	case key.Matches(msg, m.keyMap.SortDelete):
		m.store.UpdateQuadrant(t.ID, database.Delete)

	case key.Matches(msg, m.keyMap.SortUnsorted):
		m.store.UpdateQuadrant(t.ID, database.Unsorted)
	}
	m.clampCursors()
}

// updateCalendar handles keys on the week grid while no gesture is active
func (m *Model) updateCalendar(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keyMap.ToggleFocus):
		if m.focus == focusGrid {
			m.focus = focusUnscheduled
		} else {
			m.focus = focusGrid
		}
		m.clampCursors()

	case key.Matches(msg, m.keyMap.MoveUp):
		if m.focus == focusUnscheduled {
			m.moveListCursor(-1)
		} else {
			m.moveCalendarCursor(0, -1)
		}

	case key.Matches(msg, m.keyMap.MoveDown):
		if m.focus == focusUnscheduled {
			m.moveListCursor(1)
		} else {
			m.moveCalendarCursor(0, 1)
		}

	case key.Matches(msg, m.keyMap.HourUp):
		m.moveCalendarCursor(0, -scheduler.SlotsPerHour)

	case key.Matches(msg, m.keyMap.HourDown):
		m.moveCalendarCursor(0, scheduler.SlotsPerHour)

	case key.Matches(msg, m.keyMap.MoveLeft):
		m.focus = focusGrid
		m.moveCalendarCursor(-1, 0)

	case key.Matches(msg, m.keyMap.MoveRight):
		m.focus = focusGrid
		m.moveCalendarCursor(1, 0)

	case key.Matches(msg, m.keyMap.PrevWeek):
		m.sched.PrevWeek()

	case key.Matches(msg, m.keyMap.NextWeek):
		m.sched.NextWeek()

	case key.Matches(msg, m.keyMap.JumpToToday):
		now := m.sched.Now()
		w := m.sched.Today()
		if idx, ok := w.DayIndex(now); ok {
			m.cursorDay = idx
		}
		m.cursorSlot = scheduler.SlotOf(now)
		m.ensureCursorVisible()

	case key.Matches(msg, m.keyMap.ExportCalendar):
		m.exportCalendar()

	case key.Matches(msg, m.keyMap.MoveTask), key.Matches(msg, m.keyMap.Confirm):
		if t, ok := m.selectedTask(); ok && m.sched.BeginDrag(t.ID) {
			m.focus = focusGrid
			m.sched.DragOver(m.cursorCell())
		}

	case key.Matches(msg, m.keyMap.StretchTask):
		if m.focus != focusGrid {
			return
		}
		if b, ok := m.blockAt(m.cursorCell()); ok && m.sched.BeginStretch(b.Task.ID) {
			m.cursorSlot = b.HandleSlot()
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keyMap.Unschedule):
		if t, ok := m.selectedTask(); ok {
			m.sched.Unschedule(t.ID)
			m.clampCursors()
		}

	case key.Matches(msg, m.keyMap.EditTask):
		if t, ok := m.selectedTask(); ok {
			if title, ok := m.sched.BeginEdit(t.ID); ok {
				m.startEdit(EditMode, t)
				m.titleInput.SetValue(title)
			}
		}

	default:
		m.updateTaskKeys(msg)
	}
}

// updateGesture routes keys while a drag or stretch is in progress
func (m *Model) updateGesture(msg tea.KeyMsg, gesture scheduler.Mode) {
	switch {
	case key.Matches(msg, m.keyMap.MoveUp):
		m.moveCalendarCursor(0, -1)
	case key.Matches(msg, m.keyMap.MoveDown):
		m.moveCalendarCursor(0, 1)
	case key.Matches(msg, m.keyMap.HourUp):
		m.moveCalendarCursor(0, -scheduler.SlotsPerHour)
	case key.Matches(msg, m.keyMap.HourDown):
		m.moveCalendarCursor(0, scheduler.SlotsPerHour)
	case key.Matches(msg, m.keyMap.MoveLeft) && gesture == scheduler.Dragging:
		m.moveCalendarCursor(-1, 0)
	case key.Matches(msg, m.keyMap.MoveRight) && gesture == scheduler.Dragging:
		m.moveCalendarCursor(1, 0)
	case key.Matches(msg, m.keyMap.PrevWeek) && gesture == scheduler.Dragging:
		m.sched.PrevWeek()
		m.pointerEntered(m.cursorCell())
	case key.Matches(msg, m.keyMap.NextWeek) && gesture == scheduler.Dragging:
		m.sched.NextWeek()
		m.pointerEntered(m.cursorCell())

	case key.Matches(msg, m.keyMap.Confirm, m.keyMap.MoveTask, m.keyMap.StretchTask):
		if gesture == scheduler.Dragging {
			m.sched.Drop(m.cursorCell())
		} else {
			m.sched.Release()
		}
		m.clampCursors()

	case key.Matches(msg, m.keyMap.Cancel):
		if gesture == scheduler.Dragging {
			m.sched.CancelDrag()
		} else {
			m.sched.Release()
		}

	case key.Matches(msg, m.keyMap.QuitApp):
		m.sched.Release()
	}
}

// handleCalendarMouse maps pointer presses, motion and release onto the
// scheduler's drag and stretch gestures
func (m *Model) handleCalendarMouse(msg tea.MouseMsg) {
	l := m.calendarLayout()
	slot, inGrid := l.slotAt(msg.X, msg.Y, m.scrollTop)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollTop = clamp(m.scrollTop-scheduler.SlotsPerHour, 0, scheduler.SlotsPerDay-l.rows)
			return
		case tea.MouseButtonWheelDown:
			m.scrollTop = clamp(m.scrollTop+scheduler.SlotsPerHour, 0, scheduler.SlotsPerDay-l.rows)
			return
		case tea.MouseButtonLeft:
		default:
			return
		}
		m.mouseDown = true

		if idx, ok := l.panelItemAt(msg.X, msg.Y); ok {
			unscheduled := m.sched.Grid().Unscheduled
			if idx < len(unscheduled) {
				m.focus = focusUnscheduled
				m.unscheduledCursor = idx
				m.sched.BeginDrag(unscheduled[idx].ID)
			}
			return
		}
		if !inGrid {
			return
		}
		m.focus = focusGrid
		m.cursorDay, m.cursorSlot = slot.Day, slot.Index
		if b, ok := m.blockAt(slot); ok {
			// the bottom row of a block is its resize handle
			if b.OnHandle(slot.Index) && m.sched.BeginStretch(b.Task.ID) {
				return
			}
			if m.sched.BeginDrag(b.Task.ID) {
				m.sched.DragOver(slot)
			}
		}

	case tea.MouseActionMotion:
		if !m.mouseDown {
			return
		}
		if inGrid {
			m.cursorDay, m.cursorSlot = slot.Day, slot.Index
		}
		m.pointerEntered(slot)

	case tea.MouseActionRelease:
		m.mouseDown = false
		switch m.sched.Gesture().Mode {
		case scheduler.Dragging:
			// releasing outside the grid cancels
			m.sched.Drop(slot)
			m.focus = focusGrid
			m.clampCursors()
		case scheduler.Stretching:
			m.sched.Release()
		}
	}
}
