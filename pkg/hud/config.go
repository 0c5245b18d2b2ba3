package hud

import (
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/app/config"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// Config re-exports the root configuration struct so embedding programs can
// build it in code instead of YAML.
type Config = config.Config

type (
	// Policy controls journal and export queue thresholds.
	Policy = ports.Policy
	// SimulatorConfig sets the tick interval and random seed.
	SimulatorConfig = config.SimulatorConfig
	// HTTPConfig configures the API listener.
	HTTPConfig = config.HTTPConfig
	// JournalConfig enables the on-disk tick journal.
	JournalConfig = config.JournalConfig
	// TimescaleConfig enables the SQL export.
	TimescaleConfig = config.TimescaleConfig
	// LogConfig configures the zap logger.
	LogConfig = observability.LogConfig
)

// LoadConfig reads, defaults and validates YAML from disk.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
