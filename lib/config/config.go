// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/siostechcorp/Windows-Signal/lib/codec"
	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

// EnvVar names the environment variable read by Load.
const EnvVar = "IQREPORT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Platform transports.
const (
	TransportUnix = "unix"
	TransportTCP  = "tcp"
	TransportHTTP = "http"
)

// Config is the master configuration for iqreport.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// EnvironmentID is the monitoring platform environment events are
	// reported under. Zero means the command line must supply it.
	EnvironmentID int64 `yaml:"environment_id"`

	// VM names the virtual machine events concern by default.
	VM VMConfig `yaml:"vm"`

	// Events configures record defaults.
	Events EventsConfig `yaml:"events"`

	// Platform configures the transport to the monitoring platform.
	Platform PlatformConfig `yaml:"platform"`

	// Logging configures the command logger.
	Logging LoggingConfig `yaml:"logging"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	EnvironmentID int64           `yaml:"environment_id,omitempty"`
	Events        *EventsConfig   `yaml:"events,omitempty"`
	Platform      *PlatformConfig `yaml:"platform,omitempty"`
	Logging       *LoggingConfig  `yaml:"logging,omitempty"`
}

// VMConfig selects the VM by hardware address or by identifiers. At
// most one may be set.
type VMConfig struct {
	// HardwareAddress is a MAC address in any form net.ParseMAC accepts.
	HardwareAddress string `yaml:"hardware_address"`

	// Identifiers lists VM unique identifiers (typically UUIDs).
	Identifiers []string `yaml:"identifiers"`
}

// EventsConfig configures defaults applied to every record.
type EventsConfig struct {
	// DefaultEventType applies when an event names no type.
	// Default: Performance
	DefaultEventType string `yaml:"default_event_type"`

	// DefaultCategory applies when an event names no category.
	DefaultCategory string `yaml:"default_category"`
}

// PlatformConfig configures the platform transport.
type PlatformConfig struct {
	// Transport is unix, tcp, or http.
	// Default: unix
	Transport string `yaml:"transport"`

	// Address is the socket path (unix), host:port (tcp), or base URL
	// (http).
	// Default: /run/iqreport/platform.sock
	Address string `yaml:"address"`

	// TokenPath names a file holding the service token (socket) or
	// bearer token (http).
	TokenPath string `yaml:"token_path"`

	// Timeout bounds each exchange with the platform, as a Go duration.
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// Compression is none, gzip, zstd, or lz4 (socket transports only).
	// Default: none
	Compression string `yaml:"compression"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	return &Config{
		Environment: Development,
		Events: EventsConfig{
			DefaultEventType: "Performance",
		},
		Platform: PlatformConfig{
			Transport:   TransportUnix,
			Address:     "/run/iqreport/platform.sock",
			Timeout:     "30s",
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the IQREPORT_CONFIG environment
// variable. If it is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your iqreport.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current
// config. JSON is a subset of YAML, so commented JSON only needs its
// comments stripped before the YAML decoder sees it.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.EnvironmentID != 0 {
		c.EnvironmentID = overrides.EnvironmentID
	}

	if overrides.Events != nil {
		if overrides.Events.DefaultEventType != "" {
			c.Events.DefaultEventType = overrides.Events.DefaultEventType
		}
		if overrides.Events.DefaultCategory != "" {
			c.Events.DefaultCategory = overrides.Events.DefaultCategory
		}
	}

	if overrides.Platform != nil {
		if overrides.Platform.Transport != "" {
			c.Platform.Transport = overrides.Platform.Transport
		}
		if overrides.Platform.Address != "" {
			c.Platform.Address = overrides.Platform.Address
		}
		if overrides.Platform.TokenPath != "" {
			c.Platform.TokenPath = overrides.Platform.TokenPath
		}
		if overrides.Platform.Timeout != "" {
			c.Platform.Timeout = overrides.Platform.Timeout
		}
		if overrides.Platform.Compression != "" {
			c.Platform.Compression = overrides.Platform.Compression
		}
	}

	if overrides.Logging != nil && overrides.Logging.Level != "" {
		c.Logging.Level = overrides.Logging.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths
// and addresses.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Platform.Address = expandVars(c.Platform.Address, vars)
	c.Platform.TokenPath = expandVars(c.Platform.TokenPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.EnvironmentID < 0 {
		errs = append(errs, fmt.Errorf("environment_id must be positive, got %d", c.EnvironmentID))
	}

	if _, err := c.VMSelector(); err != nil {
		errs = append(errs, err)
	}

	switch c.Platform.Transport {
	case TransportUnix, TransportTCP, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("platform.transport must be one of: %v",
			[]string{TransportUnix, TransportTCP, TransportHTTP}))
	}

	if c.Platform.Address == "" {
		errs = append(errs, fmt.Errorf("platform.address is required"))
	}

	if _, err := c.PlatformTimeout(); err != nil {
		errs = append(errs, err)
	}

	compression, err := c.PlatformCompression()
	if err != nil {
		errs = append(errs, err)
	} else if compression == codec.CompressionLZ4 && c.Platform.Transport == TransportHTTP {
		errs = append(errs, fmt.Errorf("platform.compression lz4 is not available over http"))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// VMSelector returns the configured VM selector, or nil when the file
// names no VM.
func (c *Config) VMSelector() (vmref.Selector, error) {
	hasAddress := c.VM.HardwareAddress != ""
	hasIdentifiers := len(c.VM.Identifiers) > 0
	switch {
	case hasAddress && hasIdentifiers:
		return nil, fmt.Errorf("vm.hardware_address and vm.identifiers are mutually exclusive")
	case hasAddress:
		return vmref.HardwareAddress(c.VM.HardwareAddress), nil
	case hasIdentifiers:
		return vmref.Identifiers(c.VM.Identifiers), nil
	default:
		return nil, nil
	}
}

// PlatformTimeout parses platform.timeout. Empty means zero, which
// leaves the transport's own default in place.
func (c *Config) PlatformTimeout() (time.Duration, error) {
	if c.Platform.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Platform.Timeout)
	if err != nil {
		return 0, fmt.Errorf("platform.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("platform.timeout must not be negative, got %s", c.Platform.Timeout)
	}
	return timeout, nil
}

// PlatformCompression parses platform.compression.
func (c *Config) PlatformCompression() (codec.Compression, error) {
	compression, err := codec.ParseCompression(c.Platform.Compression)
	if err != nil {
		return codec.CompressionNone, fmt.Errorf("platform.compression: %w", err)
	}
	return compression, nil
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
