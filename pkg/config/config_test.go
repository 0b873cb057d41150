package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, configPath string)
		validate  func(t *testing.T, cfg *Config)
		checkFile func(t *testing.T, configPath string)
	}{
		{
			name:  "NewFile_Defaults",
			setup: func(t *testing.T, configPath string) {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Sim.Provider != "simconnect" {
					t.Errorf("expected default provider 'simconnect', got '%s'", cfg.Sim.Provider)
				}
				if time.Duration(cfg.Engine.SettleDelay) != 500*time.Millisecond {
					t.Errorf("expected default settle delay 500ms, got %v", time.Duration(cfg.Engine.SettleDelay))
				}
			},
			checkFile: func(t *testing.T, configPath string) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "provider: simconnect") {
					t.Error("config file missing default values")
				}
				if !strings.Contains(string(content), "settle_delay: 500ms") {
					t.Error("config file missing settle_delay default")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func(t *testing.T, configPath string) {
				err := os.WriteFile(configPath, []byte("sim:\n  provider: mock\nengine:\n  settle_delay: 2s\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Sim.Provider != "mock" {
					t.Errorf("expected provider 'mock', got '%s'", cfg.Sim.Provider)
				}
				if time.Duration(cfg.Engine.SettleDelay) != 2*time.Second {
					t.Errorf("expected settle delay 2s, got %v", time.Duration(cfg.Engine.SettleDelay))
				}
				if cfg.DB.Path != "./data/profiles.db" {
					t.Errorf("expected default db path preserved, got '%s'", cfg.DB.Path)
				}
			},
		},
		{
			name: "DLLPath_Env_Fallback",
			setup: func(t *testing.T, configPath string) {
				t.Setenv("SIMCONNECT_DLL", `C:\SDK\SimConnect.dll`)
				err := os.WriteFile(configPath, []byte("sim:\n  dll_path: \"\"\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Sim.DLLPath != `C:\SDK\SimConnect.dll` {
					t.Errorf("expected DLL path from env, got '%s'", cfg.Sim.DLLPath)
				}
			},
			checkFile: func(t *testing.T, configPath string) {
				// Env overrides should NOT be saved to disk
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if strings.Contains(string(content), `C:\SDK`) {
					t.Error("environment value should NOT be persisted to config file")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "simsetgo.yaml")
			tt.setup(t, configPath)

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			tt.validate(t, cfg)
			if tt.checkFile != nil {
				tt.checkFile(t, configPath)
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "simsetgo.yaml")

	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	// Existing file must not be overwritten.
	if err := os.WriteFile(configPath, []byte("sim:\n  provider: mock\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := GenerateDefault(configPath); err != nil {
		t.Fatalf("GenerateDefault() error = %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "provider: mock") {
		t.Error("GenerateDefault overwrote an existing config file")
	}
}
