package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"errday/pkg/keymaps"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"

	envPrefix = "ERRDAY"
)

// Config holds the application configuration
type Config struct {
	// empty means the platform data directory for the chosen storage
	DataFile        string            `mapstructure:"data_file"`
	Storage         string            `mapstructure:"storage"`
	ExportFile      string            `mapstructure:"export_file"`
	DefaultDuration time.Duration     `mapstructure:"default_duration"`
	MinBlockMinutes int               `mapstructure:"min_block_minutes"`
	KeyMap          map[string]string `mapstructure:"keymap"`
	StylesFile      string            `mapstructure:"styles_file"`

	// path the configuration was read from
	Path string `mapstructure:"-"`
}

// Styles holds the application colors
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color"`
	AccentColor string `mapstructure:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`
	DoneColor         string `mapstructure:"done_color"`

	// Quadrant colors, also used for calendar blocks
	DoFirstColor  string `mapstructure:"do_first_color"`
	ScheduleColor string `mapstructure:"schedule_color"`
	DelegateColor string `mapstructure:"delegate_color"`
	DeleteColor   string `mapstructure:"delete_color"`

	// Calendar grid
	GridLineColor   string `mapstructure:"grid_line_color"`
	DropTargetColor string `mapstructure:"drop_target_color"`
}

// DefaultStyles are the 256-color palette values written on first run
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		DoneColor:         "242",
		DoFirstColor:      "196",
		ScheduleColor:     "33",
		DelegateColor:     "214",
		DeleteColor:       "244",
		GridLineColor:     "237",
		DropTargetColor:   "42",
	}
}

// Dir is the default configuration directory, ~/.config/errday
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "errday"), nil
}

// Load reads the configuration at configPath, or the default location when it
// is empty. Missing config and styles files are created with defaults.
// ERRDAY_* environment variables override file values.
func Load(configPath string) (Config, Styles, error) {
	if configPath == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, DefaultStyles(), err
		}
		configPath = filepath.Join(dir, "config.json")
	}
	configDir := filepath.Dir(configPath)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_file", "")
	v.SetDefault("storage", StorageJSON)
	v.SetDefault("export_file", filepath.Join(configDir, "errday.ics"))
	v.SetDefault("default_duration", "1h")
	v.SetDefault("min_block_minutes", 15)
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))

	if err := readOrCreate(v, configPath); err != nil {
		return Config{}, DefaultStyles(), err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, DefaultStyles(), fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	cfg.Path = configPath

	if err := cfg.validate(); err != nil {
		return cfg, DefaultStyles(), err
	}

	// Now load the styles file
	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, fmt.Errorf("error loading styles: %w", err)
	}

	return cfg, styles, nil
}

func (c *Config) validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q, expected %s or %s", c.Storage, StorageJSON, StorageSQLite)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("default_duration must be positive, got %s", c.DefaultDuration)
	}
	if c.MinBlockMinutes <= 0 {
		return fmt.Errorf("min_block_minutes must be positive, got %d", c.MinBlockMinutes)
	}
	return nil
}

// loadStyles reads the styles file with its own viper instance
func loadStyles(stylesPath string) (Styles, error) {
	defaults := DefaultStyles()

	v := viper.New()
	v.SetConfigFile(stylesPath)
	v.SetConfigType("json")
	v.SetDefault("border_color", defaults.BorderColor)
	v.SetDefault("accent_color", defaults.AccentColor)
	v.SetDefault("normal_text_color", defaults.NormalTextColor)
	v.SetDefault("selected_text_color", defaults.SelectedTextColor)
	v.SetDefault("selected_bg_color", defaults.SelectedBgColor)
	v.SetDefault("error_color", defaults.ErrorColor)
	v.SetDefault("done_color", defaults.DoneColor)
	v.SetDefault("do_first_color", defaults.DoFirstColor)
	v.SetDefault("schedule_color", defaults.ScheduleColor)
	v.SetDefault("delegate_color", defaults.DelegateColor)
	v.SetDefault("delete_color", defaults.DeleteColor)
	v.SetDefault("grid_line_color", defaults.GridLineColor)
	v.SetDefault("drop_target_color", defaults.DropTargetColor)

	if err := readOrCreate(v, stylesPath); err != nil {
		return defaults, err
	}

	var styles Styles
	if err := v.Unmarshal(&styles); err != nil {
		return defaults, err
	}
	return styles, nil
}

// readOrCreate reads the file behind v, writing the defaults there first if
// it doesn't exist yet
func readOrCreate(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := v.WriteConfigAs(path); err != nil {
			return fmt.Errorf("write default %s: %w", path, err)
		}
		return nil
	} else if err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
