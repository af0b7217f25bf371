package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"planner/internal/date"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// FileName is the config file looked up inside the planner home.
const FileName = "config.json"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config represents the complete planner configuration.
type Config struct {
	Version int           `json:"version" mapstructure:"version" toml:"version"`
	Storage StorageConfig `json:"storage" mapstructure:"storage" toml:"storage"`
	Agenda  AgendaConfig  `json:"agenda" mapstructure:"agenda" toml:"agenda"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// StorageConfig selects and tunes the task store.
type StorageConfig struct {
	// Backend is one of sqlite, badger or memory.
	Backend string `json:"backend" mapstructure:"backend" toml:"backend"`
	// Path overrides the backend's default location under the home directory.
	// Relative paths are resolved against the home directory.
	Path              string `json:"path,omitempty" mapstructure:"path" toml:"path,omitempty"`
	SyncWrites        bool   `json:"syncWrites" mapstructure:"syncWrites" toml:"syncWrites"`
	GCIntervalSeconds int    `json:"gcIntervalSeconds" mapstructure:"gcIntervalSeconds" toml:"gcIntervalSeconds"`
}

// AgendaConfig contains view defaults for the agenda.
type AgendaConfig struct {
	WeekStart      string `json:"weekStart" mapstructure:"weekStart" toml:"weekStart"`
	ToggleDelayMs  int    `json:"toggleDelayMs" mapstructure:"toggleDelayMs" toml:"toggleDelayMs"`
	IncludeDone    bool   `json:"includeDone" mapstructure:"includeDone" toml:"includeDone"`
	ExclusiveDates bool   `json:"exclusiveDates" mapstructure:"exclusiveDates" toml:"exclusiveDates"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
	// File is the log file, relative to the home directory. Empty disables
	// file logging.
	File       string `json:"file" mapstructure:"file" toml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" toml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" toml:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Storage: StorageConfig{
			Backend:           BackendSQLite,
			SyncWrites:        true,
			GCIntervalSeconds: 300,
		},
		Agenda: AgendaConfig{
			WeekStart:      "monday",
			ToggleDelayMs:  600,
			IncludeDone:    false,
			ExclusiveDates: true,
		},
		Logging: LoggingConfig{
			Format:     "text",
			Level:      "info",
			File:       filepath.Join("logs", "planner.log"),
			MaxSize:    "5MB",
			MaxBackups: 2,
		},
	}
}

// DefaultHome returns ~/.planner.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(dir, ".planner"), nil
}

// ResolveHome picks the planner home directory: the explicit flag value, then
// PLANNER_HOME, then ~/.planner.
func ResolveHome(flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Abs(flagValue)
	}
	if env := os.Getenv("PLANNER_HOME"); env != "" {
		return filepath.Abs(env)
	}
	return DefaultHome()
}

// LoadConfig loads configuration from <home>/config.json with environment
// overrides applied.
func LoadConfig(home string) (*Config, error) {
	result, err := LoadConfigWithDetails(home)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadResult describes where a configuration came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// EnvOverride records one environment variable applied on top of the file.
type EnvOverride struct {
	EnvVar    string `json:"envVar"`
	FromValue string `json:"fromValue"`
	Path      string `json:"path"`
}

// LoadConfigWithDetails loads the configuration and reports its source.
// PLANNER_CONFIG_PATH, when set, must point at an existing file.
func LoadConfigWithDetails(home string) (*LoadResult, error) {
	result := &LoadResult{}

	var cfg *Config
	if envPath := os.Getenv("PLANNER_CONFIG_PATH"); envPath != "" {
		loaded, err := loadConfigFromPath(envPath)
		if err != nil {
			return nil, fmt.Errorf("PLANNER_CONFIG_PATH: %w", err)
		}
		cfg = loaded
		result.ConfigPath = envPath
	} else {
		path := filepath.Join(home, FileName)
		if _, err := os.Stat(path); err == nil {
			loaded, err := loadConfigFromPath(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			result.ConfigPath = path
		} else if errors.Is(err, os.ErrNotExist) {
			cfg = DefaultConfig()
			result.UsedDefaults = true
		} else {
			return nil, err
		}
	}

	result.EnvOverrides = applyEnvOverrides(cfg)
	result.Config = cfg
	return result, nil
}

func loadConfigFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.syncWrites", d.Storage.SyncWrites)
	v.SetDefault("storage.gcIntervalSeconds", d.Storage.GCIntervalSeconds)
	v.SetDefault("agenda.weekStart", d.Agenda.WeekStart)
	v.SetDefault("agenda.toggleDelayMs", d.Agenda.ToggleDelayMs)
	v.SetDefault("agenda.includeDone", d.Agenda.IncludeDone)
	v.SetDefault("agenda.exclusiveDates", d.Agenda.ExclusiveDates)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// Save writes the configuration to <home>/config.json, creating home if needed.
func (c *Config) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, FileName), append(data, '\n'), 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger, BackendMemory:
	default:
		return &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", c.Storage.Backend)}
	}
	if c.Storage.GCIntervalSeconds < 0 {
		return &ConfigError{Field: "storage.gcIntervalSeconds", Message: "must not be negative"}
	}
	if _, err := date.ParseWeekday(c.Agenda.WeekStart); err != nil {
		return &ConfigError{Field: "agenda.weekStart", Message: err.Error()}
	}
	if c.Agenda.ToggleDelayMs < 0 {
		return &ConfigError{Field: "agenda.toggleDelayMs", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// StoragePath returns the absolute location of the task store for home.
func (c *Config) StoragePath(home string) string {
	if c.Storage.Path != "" {
		return resolve(home, c.Storage.Path)
	}
	if c.Storage.Backend == BackendBadger {
		return filepath.Join(home, "badger")
	}
	return filepath.Join(home, "planner.db")
}

// ToggleDelay is the deferred refresh delay after completing a task.
func (c *Config) ToggleDelay() time.Duration {
	return time.Duration(c.Agenda.ToggleDelayMs) * time.Millisecond
}

// WeekStartDay parses Agenda.WeekStart, defaulting to Monday when invalid.
func (c *Config) WeekStartDay() time.Weekday {
	d, err := date.ParseWeekday(c.Agenda.WeekStart)
	if err != nil {
		return time.Monday
	}
	return d
}

// GCInterval is the badger value-log GC period; zero disables GC.
func (c *Config) GCInterval() time.Duration {
	return time.Duration(c.Storage.GCIntervalSeconds) * time.Second
}

// LogPath returns the absolute log file path, or "" when file logging is off.
func (c *Config) LogPath(home string) string {
	if c.Logging.File == "" {
		return ""
	}
	return resolve(home, c.Logging.File)
}

func resolve(home, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

type envKind int

const (
	envString envKind = iota
	envInt
	envBool
)

type envMapping struct {
	path string
	kind envKind
}

var envVarMappings = map[string]envMapping{
	"PLANNER_STORAGE_BACKEND":             {"storage.backend", envString},
	"PLANNER_STORAGE_PATH":                {"storage.path", envString},
	"PLANNER_STORAGE_SYNC_WRITES":         {"storage.syncWrites", envBool},
	"PLANNER_STORAGE_GC_INTERVAL_SECONDS": {"storage.gcIntervalSeconds", envInt},
	"PLANNER_AGENDA_WEEK_START":           {"agenda.weekStart", envString},
	"PLANNER_AGENDA_TOGGLE_DELAY_MS":      {"agenda.toggleDelayMs", envInt},
	"PLANNER_AGENDA_INCLUDE_DONE":         {"agenda.includeDone", envBool},
	"PLANNER_AGENDA_EXCLUSIVE_DATES":      {"agenda.exclusiveDates", envBool},
	"PLANNER_LOG_LEVEL":                   {"logging.level", envString},
	"PLANNER_LOG_FORMAT":                  {"logging.format", envString},
	"PLANNER_LOG_FILE":                    {"logging.file", envString},
}

// applyEnvOverrides applies every set PLANNER_* variable to cfg. Values that do
// not parse for their field are skipped.
func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for _, envVar := range GetSupportedEnvVars() {
		raw, ok := os.LookupEnv(envVar)
		if !ok {
			continue
		}
		m := envVarMappings[envVar]

		var value interface{}
		switch m.kind {
		case envInt:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			value = n
		case envBool:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			value = b
		default:
			value = raw
		}

		if applyOverride(cfg, m.path, value) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, FromValue: raw, Path: m.path})
		}
	}
	return overrides
}

// applyOverride sets the field at path. It reports false for unknown paths
// and mismatched value types.
func applyOverride(cfg *Config, path string, value interface{}) bool {
	switch path {
	case "storage.backend":
		return setString(&cfg.Storage.Backend, value)
	case "storage.path":
		return setString(&cfg.Storage.Path, value)
	case "storage.syncWrites":
		return setBool(&cfg.Storage.SyncWrites, value)
	case "storage.gcIntervalSeconds":
		return setInt(&cfg.Storage.GCIntervalSeconds, value)
	case "agenda.weekStart":
		return setString(&cfg.Agenda.WeekStart, value)
	case "agenda.toggleDelayMs":
		return setInt(&cfg.Agenda.ToggleDelayMs, value)
	case "agenda.includeDone":
		return setBool(&cfg.Agenda.IncludeDone, value)
	case "agenda.exclusiveDates":
		return setBool(&cfg.Agenda.ExclusiveDates, value)
	case "logging.level":
		return setString(&cfg.Logging.Level, value)
	case "logging.format":
		return setString(&cfg.Logging.Format, value)
	case "logging.file":
		return setString(&cfg.Logging.File, value)
	}
	return false
}

func setString(dst *string, value interface{}) bool {
	s, ok := value.(string)
	if ok {
		*dst = s
	}
	return ok
}

func setInt(dst *int, value interface{}) bool {
	n, ok := value.(int)
	if ok {
		*dst = n
	}
	return ok
}

func setBool(dst *bool, value interface{}) bool {
	b, ok := value.(bool)
	if ok {
		*dst = b
	}
	return ok
}

// GetSupportedEnvVars returns the field override variables in sorted order.
// PLANNER_HOME and PLANNER_CONFIG_PATH are read separately.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings))
	for k := range envVarMappings {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	return vars
}

// EnvVarPath returns the config path an environment variable overrides.
func EnvVarPath(envVar string) (string, bool) {
	m, ok := envVarMappings[envVar]
	return m.path, ok
}
