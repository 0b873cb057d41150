package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	DB     DBConfig     `yaml:"db"`
	Sim    SimConfig    `yaml:"sim"`
	Engine EngineConfig `yaml:"engine"`

	// Definitions points to an optional YAML file with extra
	// variable definitions merged over the built-in table.
	Definitions string `yaml:"definitions"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// SimConfig holds settings for the simulator connection.
type SimConfig struct {
	Provider string `yaml:"provider"` // "simconnect", "mock"
	AppName  string `yaml:"app_name"`
	DLLPath  string `yaml:"dll_path"`
}

// EngineConfig holds settings for the apply engine.
type EngineConfig struct {
	SettleDelay Duration `yaml:"settle_delay"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Path:  "./logs/simsetgo.log",
			Level: "INFO",
		},
		DB: DBConfig{
			Path: "./data/profiles.db",
		},
		Sim: SimConfig{
			Provider: "simconnect",
			AppName:  "SimSetGo",
		},
		Engine: EngineConfig{
			SettleDelay: Duration(500 * time.Millisecond),
		},
	}
}

// Load reads the configuration from path, merging it over the
// defaults. If the file does not exist, the defaults are saved
// to path and returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Read existing file if it exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		if cfg.Sim.DLLPath == "" {
			if p := os.Getenv("SIMCONNECT_DLL"); p != "" {
				cfg.Sim.DLLPath = p
			}
		}

		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SimSetGo Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: simconnect, mock\n${1}provider:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
