// Package config loads the client SDK's YAML configuration file: local
// user identity, station bootstrap address, and metronome tick rate
// (spec §5 "configurable intervals").
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TickRate selects the metronome's tick interval (spec §5: slow 100ms,
// normal 40ms, fast 16ms).
type TickRate string

const (
	TickSlow   TickRate = "slow"
	TickNormal TickRate = "normal"
	TickFast   TickRate = "fast"
)

func (r TickRate) Duration() time.Duration {
	switch r {
	case TickFast:
		return 16 * time.Millisecond
	case TickNormal:
		return 40 * time.Millisecond
	case TickSlow:
		return 100 * time.Millisecond
	default:
		return 40 * time.Millisecond
	}
}

// Station describes one bootstrap relay to dial.
type Station struct {
	Host   string `yaml:"host"`
	Port   uint16 `yaml:"port"`
	Secure bool   `yaml:"secure"`
}

// Config is the top-level YAML document.
type Config struct {
	Seed       string   `yaml:"seed"`
	PrivateKey string   `yaml:"private_key"` // hex-encoded secp256k1 scalar
	LogLevel   string   `yaml:"log_level"`
	TickRate   TickRate `yaml:"tick_rate"`
	Stations   []Station `yaml:"stations"`
}

// Load reads and parses a YAML config file, applying defaults for any
// field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TickRate == "" {
		c.TickRate = TickNormal
	}
}
