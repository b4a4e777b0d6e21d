package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "seerctl"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Sync     SyncConfig     `mapstructure:"sync"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Activity ActivityConfig `mapstructure:"activity"`
}

// ServerConfig holds request server configuration
type ServerConfig struct {
	URL    string `mapstructure:"url"`     // Base URL, e.g. http://localhost:5055
	APIKey string `mapstructure:"api_key"` // Sent as X-Api-Key
	UserID string `mapstructure:"user_id"` // User whose notification settings are edited
}

// APIConfig tunes the HTTP client
type APIConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"` // Applies to reads only
}

// SyncConfig tunes the sync status poller
type SyncConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ToastDuration time.Duration `mapstructure:"toast_duration"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ActivityConfig controls the local activity journal
type ActivityConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			UserID: "1",
		},
		API: APIConfig{
			Timeout:    30 * time.Second,
			RetryCount: 0,
		},
		Sync: SyncConfig{
			PollInterval: time.Second,
		},
		UI: UIConfig{
			ToastDuration: 4 * time.Second,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
		Activity: ActivityConfig{
			Enabled: true,
			File:    filepath.Join(defaultDataPath(), "activity.db"),
		},
	}
}

// defaultDataPath returns the directory for logs and the journal
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// Loader reads configuration through a viper instance so commands and tests
// do not share global state.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader. An explicit file overrides the search path.
func NewLoader(file string) *Loader {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (SEERCTL_SERVER_URL, ...)
	v.SetEnvPrefix("SEERCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Viper exposes the underlying instance for flag binding
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load reads the config file if present and applies overrides
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	// Register defaults so env vars for unset keys are visible to Unmarshal
	l.setDefaults(cfg)

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("server.url", cfg.Server.URL)
	l.v.SetDefault("server.api_key", cfg.Server.APIKey)
	l.v.SetDefault("server.user_id", cfg.Server.UserID)
	l.v.SetDefault("api.timeout", cfg.API.Timeout)
	l.v.SetDefault("api.retry_count", cfg.API.RetryCount)
	l.v.SetDefault("sync.poll_interval", cfg.Sync.PollInterval)
	l.v.SetDefault("ui.toast_duration", cfg.UI.ToastDuration)
	l.v.SetDefault("logging.file", cfg.Logging.File)
	l.v.SetDefault("logging.level", cfg.Logging.Level)
	l.v.SetDefault("activity.enabled", cfg.Activity.Enabled)
	l.v.SetDefault("activity.file", cfg.Activity.File)
}

// ConfigFile returns the file Save writes to
func (l *Loader) ConfigFile() string {
	if used := l.v.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(DefaultConfigPath(), "config.yaml")
}

// Save writes the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configFile := l.ConfigFile()

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	l.v.Set("server.url", cfg.Server.URL)
	l.v.Set("server.api_key", cfg.Server.APIKey)
	l.v.Set("server.user_id", cfg.Server.UserID)

	l.v.Set("api.timeout", cfg.API.Timeout.String())
	l.v.Set("api.retry_count", cfg.API.RetryCount)

	l.v.Set("sync.poll_interval", cfg.Sync.PollInterval.String())

	l.v.Set("ui.toast_duration", cfg.UI.ToastDuration.String())

	l.v.Set("logging.file", cfg.Logging.File)
	l.v.Set("logging.level", cfg.Logging.Level)

	l.v.Set("activity.enabled", cfg.Activity.Enabled)
	l.v.Set("activity.file", cfg.Activity.File)

	if err := l.v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearServer removes server credentials while preserving other settings
func (l *Loader) ClearServer() error {
	cfg, err := l.Load()
	if err != nil {
		return err
	}
	cfg.Server = ServerConfig{UserID: DefaultConfig().Server.UserID}
	return l.Save(cfg)
}

// IsConfigured returns true if the server URL and API key are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.APIKey != ""
}
