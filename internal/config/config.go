package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	World     WorldConfig     `toml:"world"`
	Render    RenderConfig    `toml:"render"`
	Frame     FrameConfig     `toml:"frame"`
	Assets    AssetsConfig    `toml:"assets"`
	Scene     SceneConfig     `toml:"scene"`
	Scripting ScriptingConfig `toml:"scripting"`
	Camera    CameraConfig    `toml:"camera"`
	Logging   LoggingConfig   `toml:"logging"`
}

type WorldConfig struct {
	MaxEntities int `toml:"max_entities"`
}

type RenderConfig struct {
	MaxInstances int     `toml:"max_instances"` // hard cap on the per-frame instance buffer
	FovDegrees   float32 `toml:"fov_degrees"`
	Near         float32 `toml:"near"`
	Far          float32 `toml:"far"`
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	StatsEvery   int     `toml:"stats_every"` // frames between renderer stat logs, 0 disables
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func (r RenderConfig) Aspect() float32 {
	if r.Width <= 0 || r.Height <= 0 {
		return 1
	}
	return float32(r.Width) / float32(r.Height)
}

type FrameConfig struct {
	TickRate  time.Duration `toml:"tick_rate"`
	MaxFrames uint64        `toml:"max_frames"` // 0 = run until signalled
	Headless  bool          `toml:"headless"`
}

type AssetsConfig struct {
	Manifest string `toml:"manifest"`
}

type SceneConfig struct {
	Path      string `toml:"path"`
	HotReload bool   `toml:"hot_reload"`
}

type ScriptingConfig struct {
	Script string `toml:"script"` // empty disables scripting
}

type CameraConfig struct {
	Position    [3]float32 `toml:"position"`
	Yaw         float32    `toml:"yaw"`
	Pitch       float32    `toml:"pitch"`
	Speed       float32    `toml:"speed"`
	Sensitivity float32    `toml:"sensitivity"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.MaxEntities <= 0 {
		return fmt.Errorf("world.max_entities must be positive, got %d", c.World.MaxEntities)
	}
	if c.Render.MaxInstances <= 0 {
		return fmt.Errorf("render.max_instances must be positive, got %d", c.Render.MaxInstances)
	}
	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		return fmt.Errorf("render clip range invalid: near=%v far=%v", c.Render.Near, c.Render.Far)
	}
	if c.Frame.TickRate <= 0 {
		return fmt.Errorf("frame.tick_rate must be positive, got %s", c.Frame.TickRate)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		World: WorldConfig{
			MaxEntities: 65536,
		},
		Render: RenderConfig{
			MaxInstances: 16384,
			FovDegrees:   60,
			Near:         0.1,
			Far:          1000,
			Width:        1280,
			Height:       720,
			StatsEvery:   120,
		},
		Frame: FrameConfig{
			TickRate: 16 * time.Millisecond,
			Headless: true,
		},
		Assets: AssetsConfig{
			Manifest: "data/assets.yaml",
		},
		Scene: SceneConfig{
			Path:      "data/scene.yaml",
			HotReload: true,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 2, 10},
			Yaw:         3.14159265,
			Speed:       5,
			Sensitivity: 0.003,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
