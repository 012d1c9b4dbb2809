package config

import (
	"fmt"
	"os"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"kine3d/internal/physics"
)

// Config is the simulation tuning surface loaded from engine.yaml.
// Fields missing from the file keep their compiled defaults.
type Config struct {
	Gravity            [3]float32      `yaml:"gravity"`
	CellSize           float32         `yaml:"cellSize"`
	GPUThreshold       int             `yaml:"gpuThreshold"`
	Sleep              SleepConfig     `yaml:"sleep"`
	Character          CharacterConfig `yaml:"character"`
	StaticVertexBudget int             `yaml:"staticVertexBudget"`
	Debug              DebugConfig     `yaml:"debug"`
}

// SleepConfig mirrors physics.SleepThresholds in file form.
type SleepConfig struct {
	Velocity float32 `yaml:"velocity"` // units/sec
	Angular  float32 `yaml:"angular"`  // deg/sec
	Time     float32 `yaml:"time"`     // seconds
}

// CharacterConfig carries controller defaults. Angles are degrees in the
// file; the Rad helpers convert for the controller.
type CharacterConfig struct {
	FloorMaxAngle     float32 `yaml:"floorMaxAngle"`
	WallMinSlideAngle float32 `yaml:"wallMinSlideAngle"`
	MaxSlides         int     `yaml:"maxSlides"`
	SnapLength        float32 `yaml:"snapLength"`
	SafeMargin        float32 `yaml:"safeMargin"`
}

// DebugConfig toggles the wireframe debug pass.
type DebugConfig struct {
	DrawShapes   bool `yaml:"drawShapes"`
	DrawBounds   bool `yaml:"drawBounds"`
	DrawContacts bool `yaml:"drawContacts"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:      [3]float32{0, -20, 0},
		CellSize:     physics.CellSize,
		GPUThreshold: physics.GPUBroadPhaseThreshold,
		Sleep: SleepConfig{
			Velocity: physics.SleepVelocityThreshold,
			Angular:  physics.SleepAngularThreshold,
			Time:     physics.SleepTimeThreshold,
		},
		Character: CharacterConfig{
			FloorMaxAngle:     45,
			WallMinSlideAngle: 15,
			MaxSlides:         4,
			SnapLength:        0.2,
			SafeMargin:        0.001,
		},
		StaticVertexBudget: 10000,
		Debug:              DebugConfig{DrawShapes: true},
	}
}

// Load reads and validates a config file. On any failure it returns the
// defaults alongside the error so the caller can keep running.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals yaml over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("cellSize must be positive, got %g", c.CellSize)
	}
	if c.GPUThreshold < 1 {
		return fmt.Errorf("gpuThreshold must be at least 1, got %d", c.GPUThreshold)
	}
	if c.Sleep.Velocity < 0 || c.Sleep.Angular < 0 || c.Sleep.Time < 0 {
		return fmt.Errorf("sleep thresholds must not be negative")
	}
	if c.Character.FloorMaxAngle <= 0 || c.Character.FloorMaxAngle > 90 {
		return fmt.Errorf("floorMaxAngle must be in (0, 90] degrees, got %g", c.Character.FloorMaxAngle)
	}
	if c.Character.WallMinSlideAngle < 0 || c.Character.WallMinSlideAngle >= 90 {
		return fmt.Errorf("wallMinSlideAngle must be in [0, 90) degrees, got %g", c.Character.WallMinSlideAngle)
	}
	if c.Character.MaxSlides < 1 {
		return fmt.Errorf("maxSlides must be at least 1, got %d", c.Character.MaxSlides)
	}
	if c.Character.SnapLength < 0 || c.Character.SafeMargin < 0 {
		return fmt.Errorf("snapLength and safeMargin must not be negative")
	}
	if c.StaticVertexBudget < 0 {
		return fmt.Errorf("staticVertexBudget must not be negative, got %d", c.StaticVertexBudget)
	}
	return nil
}

// GravityVec returns gravity as a world vector.
func (c *Config) GravityVec() rl.Vector3 {
	return rl.Vector3{X: c.Gravity[0], Y: c.Gravity[1], Z: c.Gravity[2]}
}

// SleepThresholds converts the file form to the backend's bundle.
func (c *Config) SleepThresholds() physics.SleepThresholds {
	return physics.SleepThresholds{
		Velocity: c.Sleep.Velocity,
		Angular:  c.Sleep.Angular,
		Time:     c.Sleep.Time,
	}
}

// FloorMaxAngleRad returns the floor cutoff in radians.
func (c *Config) FloorMaxAngleRad() float32 {
	return c.Character.FloorMaxAngle * math32.Pi / 180
}

// WallMinSlideAngleRad returns the wall slide cutoff in radians.
func (c *Config) WallMinSlideAngleRad() float32 {
	return c.Character.WallMinSlideAngle * math32.Pi / 180
}
