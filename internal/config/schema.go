package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Topology TopologyConfig `yaml:"topology"`
	History  HistoryConfig  `yaml:"history"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" validate:"required"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
	CORSOrigin   string   `yaml:"cors_origin"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// TopologyConfig controls how logical nodes are spread over zones
type TopologyConfig struct {
	Zones              []string `yaml:"zones,omitempty" validate:"omitempty,unique,dive,zone"`
	DefaultStandbyZone string   `yaml:"default_standby_zone,omitempty" validate:"omitempty,zone"`
}

// HistoryConfig bounds the undo stack
type HistoryConfig struct {
	Limit int `yaml:"limit" validate:"min=1"`
}

// AnalysisConfig selects the scorer
type AnalysisConfig struct {
	Scorer  string   `yaml:"scorer" validate:"oneof=graph http"`
	URL     string   `yaml:"url,omitempty" validate:"required_if=Scorer http,omitempty,url"`
	Timeout Duration `yaml:"timeout"`
}

// WatchConfig names a topology file to import on change
type WatchConfig struct {
	Path     string   `yaml:"path,omitempty"`
	Debounce Duration `yaml:"debounce"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
