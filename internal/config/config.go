package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Engine     EngineConfig     `yaml:"engine"`
	Input      InputConfig      `yaml:"input"`
	Controller ControllerConfig `yaml:"controller"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Scene      SceneConfig      `yaml:"scene"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type EngineConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type InputConfig struct {
	// Priority resolves keyboard/joystick writes to the same channel:
	// "latest", "keyboard" or "joystick".
	Priority  string            `yaml:"priority"`
	DeadZone  float32           `yaml:"dead_zone"`
	StepDelta float32           `yaml:"step_delta"`
	Bindings  map[string]string `yaml:"bindings"`
	KeyPulse  time.Duration     `yaml:"key_pulse"`
	Joystick  string            `yaml:"joystick"`
	Terminal  bool              `yaml:"terminal"`
}

type ControllerConfig struct {
	Speed float32    `yaml:"speed"`
	Turn  float32    `yaml:"turn"`
	Spawn [3]float32 `yaml:"spawn"`
}

type PhysicsConfig struct {
	TimeStep    float32    `yaml:"time_step"`
	MinTimeStep float32    `yaml:"min_time_step"`
	Gravity     [3]float32 `yaml:"gravity"`
	Mass        float32    `yaml:"mass"`
	Vehicle     [3]float32 `yaml:"vehicle"`
}

type SceneConfig struct {
	DataDir    string      `yaml:"data_dir"`
	ModelsFile string      `yaml:"models_file"`
	Static     QuadConfig  `yaml:"static"`
	Cache      CacheConfig `yaml:"cache"`
	Quad       QuadConfig  `yaml:"quad"`
	BSP        BSPConfig   `yaml:"bsp"`
}

type QuadConfig struct {
	MaxFaceCount int     `yaml:"max_face_count"`
	MaxQuadSize  float32 `yaml:"max_quad_size"`
}

type BSPConfig struct {
	MaxLeafFaces int `yaml:"max_leaf_faces"`
	MaxDepth     int `yaml:"max_depth"`
}

type CacheConfig struct {
	Path     string `yaml:"path"`
	Validate bool   `yaml:"validate"`
}

// Default returns the stock tuning of the racer demo.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Engine:  EngineConfig{TickInterval: 10 * time.Millisecond},
		Input: InputConfig{
			Priority:  "latest",
			DeadZone:  0.1,
			StepDelta: 0.001,
			KeyPulse:  180 * time.Millisecond,
			Terminal:  true,
		},
		Controller: ControllerConfig{
			Speed: 1750,
			Turn:  550,
			Spawn: [3]float32{2, 1, 2},
		},
		Physics: PhysicsConfig{
			TimeStep:    0.01,
			MinTimeStep: 0.001,
			Gravity:     [3]float32{0, -9.82 * 20, 0},
			Mass:        1,
			Vehicle:     [3]float32{2, 100, 2},
		},
		Scene: SceneConfig{
			DataDir:    "data",
			ModelsFile: "models.txt",
			Static:     QuadConfig{MaxFaceCount: 500, MaxQuadSize: 100},
			Cache: CacheConfig{
				Path:     "oeracer-physics-scene.bin",
				Validate: true,
			},
			Quad: QuadConfig{MaxFaceCount: 500, MaxQuadSize: 100},
			BSP:  BSPConfig{MaxLeafFaces: 16, MaxDepth: 24},
		},
	}
}

// Load reads path over Default(), so keys missing from the file keep their
// stock values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Input.Priority {
	case "latest", "keyboard", "joystick":
	default:
		return fmt.Errorf("input.priority: unknown policy %q", c.Input.Priority)
	}
	if c.Input.DeadZone < 0 || c.Input.DeadZone >= 1 {
		return fmt.Errorf("input.dead_zone: %v not in [0,1)", c.Input.DeadZone)
	}
	if c.Controller.Speed < 0 || c.Controller.Turn < 0 {
		return fmt.Errorf("controller: speed and turn must be non-negative")
	}
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("engine.tick_interval must be positive")
	}
	if c.Physics.TimeStep <= 0 || c.Physics.MinTimeStep <= 0 {
		return fmt.Errorf("physics: time steps must be positive")
	}
	if c.Physics.Mass <= 0 {
		return fmt.Errorf("physics.mass must be positive")
	}
	for _, q := range []QuadConfig{c.Scene.Quad, c.Scene.Static} {
		if q.MaxFaceCount <= 0 || q.MaxQuadSize <= 0 {
			return fmt.Errorf("scene: quad limits must be positive")
		}
	}
	if c.Scene.BSP.MaxLeafFaces <= 0 || c.Scene.BSP.MaxDepth <= 0 {
		return fmt.Errorf("scene.bsp: limits must be positive")
	}
	if c.Scene.Cache.Path == "" {
		return fmt.Errorf("scene.cache.path is empty")
	}
	return nil
}
