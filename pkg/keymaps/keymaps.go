package keymaps

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"errday/pkg/utils"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":       {"?", "show/hide commands"},
	"QuitApp":        {"q,ctrl+c", "quit"},
	"NextView":       {"tab", "next view"},
	"PrevView":       {"shift+tab", "previous view"},
	"InboxView":      {"I", "inbox"},
	"MatrixView":     {"M", "matrix"},
	"CalendarView":   {"C", "calendar"},
	"MoveUp":         {"up,k", "move up"},
	"MoveDown":       {"down,j", "move down"},
	"MoveLeft":       {"left,h", "move left"},
	"MoveRight":      {"right,l", "move right"},
	"HourUp":         {"pgup,K", "one hour up"},
	"HourDown":       {"pgdown,J", "one hour down"},
	"AddTask":        {"a", "add task"},
	"EditTask":       {"e", "edit title"},
	"EditNotes":      {"n", "edit notes"},
	"DeleteTask":     {"d", "delete task"},
	"ToggleStatus":   {"space", "toggle done"},
	"SortDoFirst":    {"1", "move to do first"},
	"SortSchedule":   {"2", "move to schedule"},
	"SortDelegate":   {"3", "move to delegate"},
	"SortDelete":     {"4", "move to delete"},
	"SortUnsorted":   {"0", "back to inbox"},
	"ToggleHideDone": {"H", "hide/show done tasks"},
	"ToggleSortBy":   {"o", "cycle sort by"},
	"PrevWeek":       {"[", "previous week"},
	"NextWeek":       {"]", "next week"},
	"JumpToToday":    {"t", "jump to now"},
	"ToggleFocus":    {"f", "switch grid/unscheduled"},
	"MoveTask":       {"m", "pick up task"},
	"StretchTask":    {"s", "resize task"},
	"Unschedule":     {"u", "unschedule task"},
	"ExportCalendar": {"x", "export calendar"},
	"Confirm":        {"enter", "confirm"},
	"Cancel":         {"esc", "cancel"},
}

type KeyMap struct {
	ShowHelp       key.Binding
	QuitApp        key.Binding
	NextView       key.Binding
	PrevView       key.Binding
	InboxView      key.Binding
	MatrixView     key.Binding
	CalendarView   key.Binding
	MoveUp         key.Binding
	MoveDown       key.Binding
	MoveLeft       key.Binding
	MoveRight      key.Binding
	HourUp         key.Binding
	HourDown       key.Binding
	AddTask        key.Binding
	EditTask       key.Binding
	EditNotes      key.Binding
	DeleteTask     key.Binding
	ToggleStatus   key.Binding
	SortDoFirst    key.Binding
	SortSchedule   key.Binding
	SortDelegate   key.Binding
	SortDelete     key.Binding
	SortUnsorted   key.Binding
	ToggleHideDone key.Binding
	ToggleSortBy   key.Binding
	PrevWeek       key.Binding
	NextWeek       key.Binding
	JumpToToday    key.Binding
	ToggleFocus    key.Binding
	MoveTask       key.Binding
	StretchTask    key.Binding
	Unschedule     key.Binding
	ExportCalendar key.Binding
	Confirm        key.Binding
	Cancel         key.Binding
}

// bindings addresses every binding by its action name
func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":       &km.ShowHelp,
		"QuitApp":        &km.QuitApp,
		"NextView":       &km.NextView,
		"PrevView":       &km.PrevView,
		"InboxView":      &km.InboxView,
		"MatrixView":     &km.MatrixView,
		"CalendarView":   &km.CalendarView,
		"MoveUp":         &km.MoveUp,
		"MoveDown":       &km.MoveDown,
		"MoveLeft":       &km.MoveLeft,
		"MoveRight":      &km.MoveRight,
		"HourUp":         &km.HourUp,
		"HourDown":       &km.HourDown,
		"AddTask":        &km.AddTask,
		"EditTask":       &km.EditTask,
		"EditNotes":      &km.EditNotes,
		"DeleteTask":     &km.DeleteTask,
		"ToggleStatus":   &km.ToggleStatus,
		"SortDoFirst":    &km.SortDoFirst,
		"SortSchedule":   &km.SortSchedule,
		"SortDelegate":   &km.SortDelegate,
		"SortDelete":     &km.SortDelete,
		"SortUnsorted":   &km.SortUnsorted,
		"ToggleHideDone": &km.ToggleHideDone,
		"ToggleSortBy":   &km.ToggleSortBy,
		"PrevWeek":       &km.PrevWeek,
		"NextWeek":       &km.NextWeek,
		"JumpToToday":    &km.JumpToToday,
		"ToggleFocus":    &km.ToggleFocus,
		"MoveTask":       &km.MoveTask,
		"StretchTask":    &km.StretchTask,
		"Unschedule":     &km.Unschedule,
		"ExportCalendar": &km.ExportCalendar,
		"Confirm":        &km.Confirm,
		"Cancel":         &km.Cancel,
	}
}

// BuildKeyMap applies config overrides on top of the defaults. Action names
// match case-insensitively since config keys come back lowercased.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	for _, action := range UnknownActions(configOverrides) {
		utils.Log("Ignoring key binding for unknown action %q", action)
	}

	km := KeyMap{}
	for action, binding := range km.bindings() {
		def := KeyDefinitions[action]
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		*binding = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if strings.TrimSpace(keyStr) == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	help := strings.Join(keys, "/")
	for _, k := range keys {
		// terminals report the space bar as a literal blank
		if k == "space" {
			keys = append(keys, " ")
		}
	}
	if len(keys) == 0 {
		return parseKeyBinding(defaultKey, defaultKey, helpText)
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(help, helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}

// Actions lists the configurable action names in a stable order
func Actions() []string {
	actions := make([]string, 0, len(KeyDefinitions))
	for action := range KeyDefinitions {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// UnknownActions returns the override names that match no action, sorted
func UnknownActions(overrides map[string]string) []string {
	known := make(map[string]bool, len(KeyDefinitions))
	for _, action := range Actions() {
		known[strings.ToLower(action)] = true
	}
	var unknown []string
	for action := range overrides {
		if !known[strings.ToLower(action)] {
			unknown = append(unknown, action)
		}
	}
	sort.Strings(unknown)
	return unknown
}
