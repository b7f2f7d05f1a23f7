// Package config provides configuration management for cloudsketch.
//
// The config file describes how the server runs (listener, database,
// scorer, zones). The sketch itself lives in the database.
//
// Config file locations (priority order):
//  1. $CLOUDSKETCH_CONFIG
//  2. ./cloudsketch.yaml
//  3. $XDG_CONFIG_HOME/cloudsketch/config.yaml
//  4. ~/.config/cloudsketch/config.yaml
//  5. /etc/cloudsketch/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloudsketch/internal/domain"
	"cloudsketch/internal/topology"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scorer names
const (
	ScorerGraph = "graph"
	ScorerHTTP  = "http"
)

var configValidate = newValidator()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	// The SSE stream stays open, so there is no write timeout unless configured
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./cloudsketch.db"
	}
	if c.History.Limit == 0 {
		c.History.Limit = 100
	}
	if c.Analysis.Scorer == "" {
		c.Analysis.Scorer = ScorerGraph
	}
	if c.Analysis.Timeout == 0 {
		c.Analysis.Timeout = Duration(30 * time.Second)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// TopologyOptions converts the topology section into expansion options
func (c *Config) TopologyOptions() topology.Options {
	opts := topology.DefaultOptions()
	if len(c.Topology.Zones) > 0 {
		opts.Zones = make([]domain.Zone, len(c.Topology.Zones))
		for i, z := range c.Topology.Zones {
			opts.Zones[i] = domain.Zone(z)
		}
	}
	if c.Topology.DefaultStandbyZone != "" {
		opts.DefaultStandbyZone = domain.Zone(c.Topology.DefaultStandbyZone)
	}
	return opts
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Addr: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Scorer: %s, Timeout: %s, History: %d\n",
		c.Analysis.Scorer, c.Analysis.Timeout.Duration(), c.History.Limit)
	if c.Watch.Path != "" {
		summary += fmt.Sprintf("Watching: %s\n", c.Watch.Path)
	}
	summary += fmt.Sprintf("Log: %s (%s)", c.Log.Level, c.Log.Format)
	return summary
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		z := domain.Zone(fl.Field().String())
		return z.Valid() && !z.IsSentinel()
	})
	return v
}
