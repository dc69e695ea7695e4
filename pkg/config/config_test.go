package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, styles, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Empty(t, cfg.DataFile)
	assert.Equal(t, time.Hour, cfg.DefaultDuration)
	assert.Equal(t, 15, cfg.MinBlockMinutes)
	assert.Equal(t, filepath.Join(dir, "errday.ics"), cfg.ExportFile)
	assert.Equal(t, filepath.Join(dir, "styles.json"), cfg.StylesFile)
	assert.NotEmpty(t, cfg.KeyMap)
	assert.Equal(t, DefaultStyles(), styles)

	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, "styles.json"))

	// second run reads what the first one wrote
	again, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DefaultDuration, again.DefaultDuration)
	assert.Equal(t, cfg.ExportFile, again.ExportFile)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "data_file": "/tmp/errday/tasks.db",
  "storage": "SQLite",
  "default_duration": "45m",
  "min_block_minutes": 30,
  "keymap": {"AddTask": "+"}
}`), 0644))

	cfg, styles, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/errday/tasks.db", cfg.DataFile)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 45*time.Minute, cfg.DefaultDuration)
	assert.Equal(t, 30, cfg.MinBlockMinutes)
	assert.Equal(t, "+", cfg.KeyMap["addtask"])
	assert.Equal(t, DefaultStyles().AccentColor, styles.AccentColor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ERRDAY_STORAGE", "sqlite")
	t.Setenv("ERRDAY_DEFAULT_DURATION", "2h")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 2*time.Hour, cfg.DefaultDuration)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage", `{"storage": "postgres"}`},
		{"zero duration", `{"default_duration": "0s"}`},
		{"negative block", `{"min_block_minutes": -5}`},
		{"not json", `storage = json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))
			_, _, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadStyles_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accent_color": "99"}`), 0644))

	styles, err := loadStyles(path)
	require.NoError(t, err)
	assert.Equal(t, "99", styles.AccentColor)
	assert.Equal(t, DefaultStyles().ScheduleColor, styles.ScheduleColor)
}
