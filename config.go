package stagecraft

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the engine runtime configuration, loaded from TOML. Every field
// has a default; a config file only needs the keys it overrides.
type Config struct {
	Frame   FrameConfig   `toml:"frame"`
	World   WorldConfig   `toml:"world"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

// FrameConfig tunes the frame driver.
type FrameConfig struct {
	// TickRate is the target interval between frames when Run drives the
	// loop with its own ticker.
	TickRate time.Duration `toml:"tick_rate"`
	// FixedStep is the FixedUpdate timestep. Zero disables the fixed stage.
	FixedStep time.Duration `toml:"fixed_step"`
	// MaxSubsteps caps FixedUpdate catch-up iterations per frame; when the
	// cap is hit the remaining accumulated time is dropped.
	MaxSubsteps int `toml:"max_substeps"`
}

// WorldConfig tunes per-scene container pre-allocation.
type WorldConfig struct {
	EntityCapacity    int `toml:"entity_capacity"`
	ComponentCapacity int `toml:"component_capacity"`
}

// LoggingConfig configures the zap logger built by NewLogger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// DebugConfig holds debug-build style toggles.
type DebugConfig struct {
	// LeakCheck reports resources never explicitly destroyed at shutdown.
	LeakCheck bool `toml:"leak_check"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Frame: FrameConfig{
			TickRate:    16 * time.Millisecond,
			FixedStep:   20 * time.Millisecond,
			MaxSubsteps: 5,
		},
		World: WorldConfig{
			EntityCapacity:    256,
			ComponentCapacity: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			LeakCheck: false,
		},
	}
}

// LoadConfig reads a TOML config file, overlaying the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
