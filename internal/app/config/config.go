package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

type Config struct {
	Simulator SimulatorConfig         `yaml:"simulator"`
	Policy    ports.Policy            `yaml:"policy"`
	HTTP      HTTPConfig              `yaml:"http"`
	Journal   JournalConfig           `yaml:"journal"`
	Timescale TimescaleConfig         `yaml:"timescale"`
	Log       observability.LogConfig `yaml:"log"`
}

type SimulatorConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Seed makes runs reproducible; zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// JournalConfig enables the on-disk ledger journal when Dir is set.
type JournalConfig struct {
	Dir string `yaml:"dir"`
}

// TimescaleConfig enables the SQL export when ConnString is set.
type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Simulator.Interval == 0 {
		c.Simulator.Interval = 3 * time.Second
	}
	if c.Policy.MaxJournalSizeBytes == 0 {
		c.Policy.MaxJournalSizeBytes = 1 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 1_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 100
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 250 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "drop"
	}
	if c.Policy.OnJournalFull == "" {
		c.Policy.OnJournalFull = "drop"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.HeartbeatInterval == 0 {
		c.HTTP.HeartbeatInterval = 15 * time.Second
	}
	if c.Timescale.Table == "" {
		c.Timescale.Table = "hud_ticks"
	}

	c.Log.ApplyDefaults()
}

func (c *Config) Validate() error {
	if c.Simulator.Interval <= 0 {
		return errors.New("simulator.interval must be > 0")
	}
	if c.Policy.MaxQueueLen <= 0 {
		return errors.New("policy.max_queue_len must be > 0")
	}
	if c.Policy.MaxBatchSize <= 0 {
		return errors.New("policy.max_batch_size must be > 0")
	}
	switch c.Policy.OnQueueFull {
	case "block", "drop", "reject":
	default:
		return fmt.Errorf("policy.on_queue_full: unknown policy %q", c.Policy.OnQueueFull)
	}
	switch c.Policy.OnJournalFull {
	case "block", "drop":
	default:
		return fmt.Errorf("policy.on_journal_full: unknown policy %q", c.Policy.OnJournalFull)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}
