package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DBPath      string  `yaml:"db_path"`
	DayPolicy   string  `yaml:"day_policy"`   // "latest-session", "recency"
	LogLevel    string  `yaml:"log_level"`    // "debug", "info", "warn", "error"
	LogFile     string  `yaml:"log_file"`     // Empty logs to stderr
	RoutineFile string  `yaml:"routine_file"` // Empty uses the built-in weekly routine
	WeightStep  float64 `yaml:"weight_step"`  // Increment suggested when a set was completed
	FuzzyFinder string  `yaml:"fuzzy_finder"` // "fzf", "peco", "auto"
}

// configFile represents the YAML config file structure
type configFile struct {
	Version     string  `yaml:"version"`
	DBPath      string  `yaml:"db_path,omitempty"`
	DayPolicy   string  `yaml:"day_policy,omitempty"`
	LogLevel    string  `yaml:"log_level,omitempty"`
	LogFile     string  `yaml:"log_file,omitempty"`
	RoutineFile string  `yaml:"routine_file,omitempty"`
	WeightStep  float64 `yaml:"weight_step,omitempty"`
	FuzzyFinder string  `yaml:"fuzzy_finder,omitempty"`
}

const (
	// CurrentConfigVersion is the current version of the config file format
	CurrentConfigVersion = "1"

	DefaultDayPolicy  = "latest-session"
	DefaultLogLevel   = "warn"
	DefaultWeightStep = 2.5
)

// Environment variables, highest priority
const (
	EnvDBPath      = "TITAN_DB"
	EnvDayPolicy   = "TITAN_DAY_POLICY"
	EnvLogLevel    = "TITAN_LOG_LEVEL"
	EnvLogFile     = "TITAN_LOG_FILE"
	EnvRoutineFile = "TITAN_ROUTINE_FILE"
	EnvWeightStep  = "TITAN_WEIGHT_STEP"
	EnvFuzzyFinder = "TITAN_FUZZY_FINDER"
)

// GetConfigDir returns the OS-specific config directory for titan
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", eris.Wrap(err, "failed to get user home directory")
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", eris.New("APPDATA environment variable not set")
		}
		baseDir = appData
	default: // linux and others
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = xdgConfigHome
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", eris.Wrap(err, "failed to get user home directory")
			}
			baseDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(baseDir, "titan"), nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", eris.Wrap(err, "failed to get config directory")
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return eris.Wrap(err, "failed to get config directory")
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return eris.Wrapf(err, "failed to create config directory: %s", configDir)
	}

	return nil
}

// GetDBPath returns the SQLite database path with configuration hierarchy
func GetDBPath() (string, error) {
	// 1. Environment variable (highest priority)
	if envPath := os.Getenv(EnvDBPath); envPath != "" {
		return expandHome(envPath)
	}

	// 2. Config file
	config, err := loadConfigFile()
	if err == nil && config.DBPath != "" {
		return expandHome(config.DBPath)
	}

	// 3. Default (lowest priority)
	configDir, err := GetConfigDir()
	if err != nil {
		return "", eris.Wrap(err, "failed to get config directory")
	}

	return filepath.Join(configDir, "titan.db"), nil
}

// LoadConfig loads the full configuration with all settings resolved and validated
func LoadConfig() (*Config, error) {
	file, err := loadConfigFile()
	if err != nil {
		return nil, err
	}

	dbPath, err := GetDBPath()
	if err != nil {
		return nil, eris.Wrap(err, "failed to get database path")
	}

	config := &Config{
		DBPath:      dbPath,
		DayPolicy:   resolve(EnvDayPolicy, file.DayPolicy, DefaultDayPolicy),
		LogLevel:    resolve(EnvLogLevel, file.LogLevel, DefaultLogLevel),
		LogFile:     resolve(EnvLogFile, file.LogFile, ""),
		RoutineFile: resolve(EnvRoutineFile, file.RoutineFile, ""),
		WeightStep:  file.WeightStep,
		FuzzyFinder: resolve(EnvFuzzyFinder, file.FuzzyFinder, "auto"),
	}

	if envStep := os.Getenv(EnvWeightStep); envStep != "" {
		step, err := strconv.ParseFloat(envStep, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid %s: %s", EnvWeightStep, envStep)
		}
		config.WeightStep = step
	}
	if config.WeightStep == 0 {
		config.WeightStep = DefaultWeightStep
	}

	for _, path := range []*string{&config.LogFile, &config.RoutineFile} {
		if *path, err = expandHome(*path); err != nil {
			return nil, err
		}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// resolve applies the env > file > default hierarchy to a single string setting
func resolve(env, fileValue, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

// loadConfigFile loads the config file from disk (internal helper)
func loadConfigFile() (*configFile, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, return empty config (not an error)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &configFile{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read config file: %s", configPath)
	}

	var config configFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, eris.Wrapf(err, "failed to parse config file: %s", configPath)
	}

	return &config, nil
}

// expandHome expands ~ to the user's home directory in a path
func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "failed to get user home directory")
	}

	if len(path) == 1 {
		return home, nil
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(config *Config) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return eris.Wrap(err, "failed to get config path")
	}

	if err := EnsureConfigDir(); err != nil {
		return eris.Wrap(err, "failed to ensure config directory")
	}

	cf := configFile{
		Version:     CurrentConfigVersion,
		DBPath:      config.DBPath,
		DayPolicy:   config.DayPolicy,
		LogLevel:    config.LogLevel,
		LogFile:     config.LogFile,
		RoutineFile: config.RoutineFile,
		WeightStep:  config.WeightStep,
		FuzzyFinder: config.FuzzyFinder,
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return eris.Wrap(err, "failed to marshal config to YAML")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write config file: %s", configPath)
	}

	return nil
}

// ValidateConfig validates the configuration settings
func ValidateConfig(config *Config) error {
	if config.DayPolicy != "" && !oneOf(config.DayPolicy, "latest-session", "recency") {
		return eris.Errorf("invalid day_policy: %s (must be one of: latest-session, recency)", config.DayPolicy)
	}

	if config.LogLevel != "" && !oneOf(strings.ToLower(config.LogLevel), "debug", "info", "warn", "error") {
		return eris.Errorf("invalid log_level: %s (must be one of: debug, info, warn, error)", config.LogLevel)
	}

	if config.FuzzyFinder != "" && !oneOf(config.FuzzyFinder, "auto", "fzf", "peco") {
		return eris.Errorf("invalid fuzzy_finder: %s (must be one of: auto, fzf, peco)", config.FuzzyFinder)
	}

	if config.WeightStep < 0 {
		return eris.Errorf("invalid weight_step: %v (must not be negative)", config.WeightStep)
	}

	if config.DBPath != "" {
		if _, err := expandHome(config.DBPath); err != nil {
			return eris.Wrap(err, "invalid db_path")
		}
	}

	return nil
}

// ValidateConfigFile validates a config file at the given path
func ValidateConfigFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return eris.Wrapf(err, "failed to read config file: %s", configPath)
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return eris.Wrapf(err, "failed to parse config file: %s", configPath)
	}

	if file.Version != "" && file.Version != CurrentConfigVersion {
		return eris.Errorf("unsupported config version: %s", file.Version)
	}

	return ValidateConfig(&Config{
		DBPath:      file.DBPath,
		DayPolicy:   file.DayPolicy,
		LogLevel:    file.LogLevel,
		LogFile:     file.LogFile,
		RoutineFile: file.RoutineFile,
		WeightStep:  file.WeightStep,
		FuzzyFinder: file.FuzzyFinder,
	})
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
