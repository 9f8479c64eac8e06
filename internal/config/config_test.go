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
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "valid yaml overrides defaults",
			createFile: true,
			content: `logging:
  level: "debug"
  file: "racer.log"
engine:
  tick_interval: 20ms
input:
  priority: "keyboard"
  dead_zone: 0.2
  bindings:
    reset: "x"
controller:
  speed: 900
  spawn: [0, 5, 0]
scene:
  cache:
    path: "tmp/physics.bin"
    validate: false
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.File != "racer.log" {
					t.Errorf("Logging.File = %q, want %q", cfg.Logging.File, "racer.log")
				}
				if cfg.Engine.TickInterval != 20*time.Millisecond {
					t.Errorf("Engine.TickInterval = %v, want 20ms", cfg.Engine.TickInterval)
				}
				if cfg.Input.Priority != "keyboard" {
					t.Errorf("Input.Priority = %q, want %q", cfg.Input.Priority, "keyboard")
				}
				if cfg.Input.DeadZone != 0.2 {
					t.Errorf("Input.DeadZone = %v, want 0.2", cfg.Input.DeadZone)
				}
				if cfg.Input.Bindings["reset"] != "x" {
					t.Errorf("Input.Bindings[reset] = %q, want %q", cfg.Input.Bindings["reset"], "x")
				}
				if cfg.Controller.Speed != 900 {
					t.Errorf("Controller.Speed = %v, want 900", cfg.Controller.Speed)
				}
				if cfg.Controller.Turn != 550 {
					t.Errorf("Controller.Turn = %v, want default 550", cfg.Controller.Turn)
				}
				if cfg.Controller.Spawn != [3]float32{0, 5, 0} {
					t.Errorf("Controller.Spawn = %v, want [0 5 0]", cfg.Controller.Spawn)
				}
				if cfg.Scene.Cache.Path != "tmp/physics.bin" || cfg.Scene.Cache.Validate {
					t.Errorf("Scene.Cache = %+v, want tmp/physics.bin without validation", cfg.Scene.Cache)
				}
				if cfg.Scene.Quad.MaxFaceCount != 500 {
					t.Errorf("Scene.Quad.MaxFaceCount = %d, want default 500", cfg.Scene.Quad.MaxFaceCount)
				}
			},
		},
		{
			name:       "missing file",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("want not-exist error, got: %v", err)
				}
			},
		},
		{
			name:       "malformed yaml",
			createFile: true,
			content: `controller:
  speed: [1750
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("want yaml parse error, got: %v", err)
				}
			},
		},
		{
			name:       "unknown priority rejected",
			createFile: true,
			content: `input:
  priority: "mouse"
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "input.priority") {
					t.Errorf("want priority error, got: %v", err)
				}
			},
		},
		{
			name:       "empty file keeps defaults",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				def := Default()
				if cfg.Controller != def.Controller {
					t.Errorf("Controller = %+v, want %+v", cfg.Controller, def.Controller)
				}
				if cfg.Input.DeadZone != def.Input.DeadZone {
					t.Errorf("Input.DeadZone = %v, want %v", cfg.Input.DeadZone, def.Input.DeadZone)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("write config: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() returned nil config")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"dead zone too large", func(c *Config) { c.Input.DeadZone = 1 }, "dead_zone"},
		{"negative speed", func(c *Config) { c.Controller.Speed = -1 }, "speed"},
		{"zero tick", func(c *Config) { c.Engine.TickInterval = 0 }, "tick_interval"},
		{"zero time step", func(c *Config) { c.Physics.TimeStep = 0 }, "time steps"},
		{"zero face count", func(c *Config) { c.Scene.Quad.MaxFaceCount = 0 }, "quad"},
		{"zero bsp depth", func(c *Config) { c.Scene.BSP.MaxDepth = 0 }, "bsp"},
		{"empty cache path", func(c *Config) { c.Scene.Cache.Path = "" }, "cache.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
