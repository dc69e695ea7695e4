package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"errday/pkg/config"
	"errday/pkg/database"
	"errday/pkg/keymaps"
	"errday/pkg/scheduler"
	"errday/pkg/utils"
)

// ViewMode is the screen being shown
type ViewMode int

const (
	InboxView ViewMode = iota
	MatrixView
	CalendarView
)

var viewNames = []string{"Inbox", "Matrix", "Calendar"}

func (v ViewMode) String() string {
	return viewNames[v]
}

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	NotesMode
	DeleteConfirmMode
	HelpViewMode
)

// calendarFocus is the calendar region receiving cursor keys
type calendarFocus int

const (
	focusGrid calendarFocus = iota
	focusUnscheduled
)

// liveTasks is refreshed by the store subscription. It lives behind a
// pointer so every copy of the Model sees the latest snapshot.
type liveTasks struct {
	version uint64
	tasks   []database.Task
}

func (l *liveTasks) set(snap database.Snapshot) {
	l.version = snap.Version
	l.tasks = snap.Tasks
}

// Model represents the application state
type Model struct {
	store       *database.Store
	sched       *scheduler.Scheduler
	live        *liveTasks
	unsubscribe func()

	width, height int
	err           error
	status        string

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	// View state
	viewMode ViewMode
	mode     InputMode
	sortBy   SortBy
	hideDone bool

	// Inbox and matrix cursors
	inboxCursor    int
	matrixSelected int
	matrixCursor   [4]int

	// Calendar cursor, in slots of the visible week
	focus             calendarFocus
	cursorDay         int
	cursorSlot        int
	scrollTop         int
	unscheduledCursor int
	mouseDown         bool

	// Form state
	titleInput  textinput.Model
	descInput   textinput.Model
	activeInput int

	// Edit/delete state
	editingID uuid.UUID
}

// NewModel creates a new UI model on top of the store
func NewModel(store *database.Store, cfg config.Config, styles config.Styles) Model {
	opts := scheduler.Options{
		DefaultDuration: cfg.DefaultDuration,
		MinBlockMinutes: cfg.MinBlockMinutes,
	}
	return newModel(store, scheduler.New(store, opts), cfg, styles)
}

func newModel(store *database.Store, sched *scheduler.Scheduler, cfg config.Config, styles config.Styles) Model {
	// Initialize text inputs
	titleInput := textinput.New()
	titleInput.Placeholder = "What needs doing?"
	titleInput.CharLimit = 200
	titleInput.Width = 50

	descInput := textinput.New()
	descInput.Placeholder = "Notes (optional)"
	descInput.Width = 50

	live := &liveTasks{version: store.Version(), tasks: store.Tasks()}
	unsubscribe := store.Subscribe(live.set)

	m := Model{
		store:       store,
		sched:       sched,
		live:        live,
		unsubscribe: unsubscribe,
		config:      cfg,
		styles:      styles,
		keyMap:      keymaps.BuildKeyMap(cfg.KeyMap),
		viewMode:    InboxView,
		mode:        NormalMode,
		titleInput:  titleInput,
		descInput:   descInput,
		width:       100,
		height:      40,
	}

	// start the calendar on the working day
	today := sched.Week()
	if idx, ok := today.DayIndex(sched.Now()); ok {
		m.cursorDay = idx
	}
	m.cursorSlot = 9 * scheduler.SlotsPerHour
	m.scrollTop = 8 * scheduler.SlotsPerHour

	utils.Log("UI started with %d tasks from %s", len(live.tasks), store.Location())
	return m
}

// Init initializes the model (required by Bubble Tea Model interface)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Close stops listening to the store
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// tasks is the latest collection the store published
func (m Model) tasks() []database.Task {
	return m.live.tasks
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	m.titleInput.Reset()
	m.descInput.Reset()

	m.activeInput = 0
	m.titleInput.Focus()
	m.descInput.Blur()
}
