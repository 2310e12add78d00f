package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

const appName = "lazyjson"

// Config holds all application configuration
type Config struct {
	Viewer  ViewerConfig  `mapstructure:"viewer" yaml:"viewer"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ViewerConfig struct {
	ExpansionPolicy      string `mapstructure:"expansion_policy" yaml:"expansion_policy"`
	ExpandSingleChildren bool   `mapstructure:"expand_single_children" yaml:"expand_single_children"`
	CollapseMode         string `mapstructure:"collapse_mode" yaml:"collapse_mode"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme" yaml:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled" yaml:"mouse_enabled"`
	ShowPreview  bool   `mapstructure:"show_preview" yaml:"show_preview"`
}

type SearchConfig struct {
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	MaxEntries int    `mapstructure:"max_entries" yaml:"max_entries"`
	Path       string `mapstructure:"path" yaml:"path"`
}

type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	DebounceMs int  `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Viewer: ViewerConfig{
			ExpansionPolicy:      "first-item-expanded",
			ExpandSingleChildren: true,
			CollapseMode:         "reset",
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
			ShowPreview:  true,
		},
		Search: SearchConfig{
			ChunkSize: 2048,
		},
		History: HistoryConfig{
			Enabled:    false,
			MaxEntries: 200,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 150,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from path, or from config.yaml in the usual
// locations when path is empty. Environment variables such as
// LAZYJSON_VIEWER_EXPANSION_POLICY override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := GetDefaults()
	v.SetDefault("viewer.expansion_policy", defaults.Viewer.ExpansionPolicy)
	v.SetDefault("viewer.expand_single_children", defaults.Viewer.ExpandSingleChildren)
	v.SetDefault("viewer.collapse_mode", defaults.Viewer.CollapseMode)
	v.SetDefault("ui.theme", defaults.UI.Theme)
	v.SetDefault("ui.mouse_enabled", defaults.UI.MouseEnabled)
	v.SetDefault("ui.show_preview", defaults.UI.ShowPreview)
	v.SetDefault("search.chunk_size", defaults.Search.ChunkSize)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.max_entries", defaults.History.MaxEntries)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("watch.enabled", defaults.Watch.Enabled)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("viewer.expansion_policy: %w", err)
	}
	if _, err := c.Expander(); err != nil {
		return fmt.Errorf("viewer.collapse_mode: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Search.ChunkSize < 0 {
		return fmt.Errorf("search.chunk_size must not be negative, got %d", c.Search.ChunkSize)
	}
	return nil
}

// Policy returns the configured initial expansion policy
func (c *Config) Policy() (models.ExpansionPolicy, error) {
	return models.ParseExpansionPolicy(c.Viewer.ExpansionPolicy)
}

// Expander returns the configured toggle behavior
func (c *Config) Expander() (models.Expander, error) {
	mode, err := models.ParseCollapseMode(c.Viewer.CollapseMode)
	if err != nil {
		return models.Expander{}, err
	}
	return models.Expander{ExpandSingleChildren: c.Viewer.ExpandSingleChildren, Collapse: mode}, nil
}

// LogLevel returns the configured logrus level
func (c *Config) LogLevel() (logrus.Level, error) {
	return logrus.ParseLevel(c.Log.Level)
}

// HistoryPath returns where query history is stored
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// YAML renders the effective configuration
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("error marshaling config: %w", err)
	}
	return string(out), nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
