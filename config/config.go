// Package config loads and validates the dashd daemon configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/openclaw/dashd/errors"
)

// DiscoveryConfig controls the background workspace scan.
type DiscoveryConfig struct {
	IntervalSeconds        int      `yaml:"interval_seconds"`
	ActiveThresholdMinutes int      `yaml:"active_threshold_minutes"`
	ContentExcerptBytes    int      `yaml:"content_excerpt_bytes"`
	IgnorePatterns         []string `yaml:"ignore_patterns"`
}

// Interval returns the scan interval as a duration.
func (d DiscoveryConfig) Interval() time.Duration {
	return time.Duration(d.IntervalSeconds) * time.Second
}

// ActiveThreshold returns the active/idle recency threshold as a duration.
func (d DiscoveryConfig) ActiveThreshold() time.Duration {
	return time.Duration(d.ActiveThresholdMinutes) * time.Minute
}

// ChannelConfig controls realtime channel delivery.
type ChannelConfig struct {
	QueueBound         int `yaml:"queue_bound"`
	SendTimeoutSeconds int `yaml:"send_timeout_seconds"`
	HeartbeatSeconds   int `yaml:"heartbeat_seconds"`
}

// SendTimeout returns the per-subscriber write timeout.
func (c ChannelConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// HeartbeatInterval returns the idle heartbeat interval.
func (c ChannelConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// CollectorConfig controls the supplemental jobs/sessions collectors.
type CollectorConfig struct {
	JobsIntervalSeconds     int `yaml:"jobs_interval_seconds"`
	SessionsIntervalSeconds int `yaml:"sessions_interval_seconds"`
}

// LogConfig controls daemon logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the root dashd configuration, loaded from dashd.yml.
type Config struct {
	WorkspaceRoot string `yaml:"workspace_root"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`

	Discovery  DiscoveryConfig `yaml:"discovery"`
	Channels   ChannelConfig   `yaml:"channels"`
	Collectors CollectorConfig `yaml:"collectors"`
	Signatures SignatureConfig `yaml:"signatures"`
	Log        LogConfig       `yaml:"log"`

	// Extensions holds namespaced configuration blocks that dashd itself
	// does not interpret. Decode them with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"extensions,omitempty"`
}

// UnmarshalExtension decodes a named extension block into out. A missing
// key is not an error; out is left untouched.
func (c *Config) UnmarshalExtension(key string, out interface{}) error {
	raw, ok := c.Extensions[key]
	if !ok {
		return nil
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode extension '"+key+"'")
	}
	return nil
}

// Validate applies defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.WorkspaceRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.ConfigInvalid("workspace_root is not set and home directory is unknown")
		}
		c.WorkspaceRoot = filepath.Join(home, ".openclaw")
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8765
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.ConfigInvalid("port out of range")
	}

	if c.Discovery.IntervalSeconds == 0 {
		c.Discovery.IntervalSeconds = 300
	}
	if c.Discovery.IntervalSeconds < 1 {
		return errors.ConfigInvalid("discovery.interval_seconds must be positive")
	}
	if c.Discovery.ActiveThresholdMinutes == 0 {
		c.Discovery.ActiveThresholdMinutes = 30
	}
	if c.Discovery.ContentExcerptBytes == 0 {
		c.Discovery.ContentExcerptBytes = 4096
	}
	if c.Discovery.IgnorePatterns == nil {
		c.Discovery.IgnorePatterns = []string{
			".git", "node_modules", ".venv", "__pycache__", "dist", ".cache",
		}
	}

	if c.Channels.QueueBound == 0 {
		c.Channels.QueueBound = 100
	}
	if c.Channels.SendTimeoutSeconds == 0 {
		c.Channels.SendTimeoutSeconds = 3
	}
	if c.Channels.HeartbeatSeconds == 0 {
		c.Channels.HeartbeatSeconds = 30
	}

	if c.Collectors.JobsIntervalSeconds == 0 {
		c.Collectors.JobsIntervalSeconds = 30
	}
	if c.Collectors.SessionsIntervalSeconds == 0 {
		c.Collectors.SessionsIntervalSeconds = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Signatures.applyDefaults()
	return nil
}

// StateDir returns the directory for daemon runtime files (pidfile).
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "dashd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "dashd")
	}
	return filepath.Join(home, ".local", "state", "dashd")
}

// PidFilePath returns the daemon pidfile location.
func PidFilePath() string {
	return filepath.Join(StateDir(), "dashd.pid")
}
