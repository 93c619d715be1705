// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/siostechcorp/Windows-Signal/cmd/iqreport/cli"
	"github.com/siostechcorp/Windows-Signal/lib/config"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/platform"
	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

// PlatformFlags are the flags shared by every reporting command. Each
// one overrides the matching configuration key when set.
type PlatformFlags struct {
	ConfigPath    string        `flag:"config" desc:"configuration file (default: $IQREPORT_CONFIG, else built-in defaults)"`
	EnvironmentID int64         `flag:"environment-id" desc:"platform environment id (overrides environment_id)"`
	MAC           string        `flag:"mac" desc:"hardware address of the VM the event concerns"`
	VMUUIDs       []string      `flag:"vm-uuid" desc:"VM unique identifier, repeatable (excludes --mac)"`
	Transport     string        `flag:"transport" desc:"platform transport: unix, tcp, or http"`
	Address       string        `flag:"address" desc:"platform socket path, host:port, or base URL"`
	TokenPath     string        `flag:"token-file" desc:"file holding the platform token"`
	Compression   string        `flag:"compression" desc:"batch compression: none, gzip, zstd, or lz4"`
	Timeout       time.Duration `flag:"timeout" desc:"bound on each exchange with the platform"`
	LogLevel      string        `flag:"log-level" desc:"debug, info, warn, or error"`
}

// loadConfig loads the configuration file (if any), applies flag
// overrides, and validates the result. With neither --config nor
// IQREPORT_CONFIG, the built-in defaults are the base.
func (f *PlatformFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case f.ConfigPath != "":
		cfg, err = config.LoadFile(f.ConfigPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *PlatformFlags) apply(cfg *config.Config) {
	if f.EnvironmentID != 0 {
		cfg.EnvironmentID = f.EnvironmentID
	}
	// Either VM flag replaces the configured VM entirely; giving both
	// fails validation.
	if f.MAC != "" || len(f.VMUUIDs) > 0 {
		cfg.VM = config.VMConfig{HardwareAddress: f.MAC, Identifiers: f.VMUUIDs}
	}
	if f.Transport != "" {
		cfg.Platform.Transport = f.Transport
	}
	if f.Address != "" {
		cfg.Platform.Address = f.Address
	}
	if f.TokenPath != "" {
		cfg.Platform.TokenPath = f.TokenPath
	}
	if f.Compression != "" {
		cfg.Platform.Compression = f.Compression
	}
	if f.Timeout > 0 {
		cfg.Platform.Timeout = f.Timeout.String()
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
}

// reporter holds everything resolved from configuration before an
// event is built.
type reporter struct {
	streams Streams
	config  *config.Config
	logger  *slog.Logger
	builder *event.Builder
}

func newReporter(streams Streams, flags *PlatformFlags, command string) (*reporter, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(streams.Stderr, level).With("command", command)

	if cfg.EnvironmentID == 0 {
		return nil, errors.New("environment id is required (--environment-id, or environment_id in the configuration file)")
	}

	var reference vmref.Reference
	selector, err := cfg.VMSelector()
	if err != nil {
		return nil, err
	}
	if selector != nil {
		reference, err = vmref.Resolve(selector)
		if err != nil {
			return nil, err
		}
	}

	builder, err := event.NewBuilder(event.BuilderConfig{
		EnvironmentID:    event.EnvironmentID(cfg.EnvironmentID),
		VM:               reference,
		DefaultEventType: cfg.Events.DefaultEventType,
		DefaultCategory:  cfg.Events.DefaultCategory,
		Clock:            streams.Clock,
	})
	if err != nil {
		return nil, err
	}

	return &reporter{
		streams: streams,
		config:  cfg,
		logger:  logger.With("environment_id", cfg.EnvironmentID, "vm", reference.String()),
		builder: builder,
	}, nil
}

// report builds the batch for input and sends it in a session of its
// own. Every input problem is reported before the platform is
// contacted.
func (r *reporter) report(ctx context.Context, input event.RawInput) error {
	records, err := r.builder.Records(input)
	if err != nil {
		return err
	}
	batch, err := event.Assemble(r.builder.EnvironmentID(), records)
	if err != nil {
		return err
	}
	digest, err := batch.Digest()
	if err != nil {
		return err
	}

	client, err := newClient(r.config, r.logger)
	if err != nil {
		return err
	}
	if err := platform.Report(ctx, client, batch, r.logger.With("digest", digest)); err != nil {
		return err
	}

	fmt.Fprintf(r.streams.Stdout, "reported %d event(s) to environment %s (digest %s)\n",
		batch.Len(), batch.EnvironmentID, digest)
	return nil
}

// newClient builds the platform client cfg names. cfg has been
// validated.
func newClient(cfg *config.Config, logger *slog.Logger) (platform.Client, error) {
	timeout, err := cfg.PlatformTimeout()
	if err != nil {
		return nil, err
	}
	compression, err := cfg.PlatformCompression()
	if err != nil {
		return nil, err
	}

	switch cfg.Platform.Transport {
	case config.TransportHTTP:
		return platform.NewHTTPClient(platform.HTTPConfig{
			BaseURL:     cfg.Platform.Address,
			TokenPath:   cfg.Platform.TokenPath,
			Compression: compression,
			Timeout:     timeout,
			Logger:      logger,
		})
	default:
		return platform.NewSocketClient(platform.SocketConfig{
			Network:         cfg.Platform.Transport,
			Address:         cfg.Platform.Address,
			TokenPath:       cfg.Platform.TokenPath,
			Compression:     compression,
			ResponseTimeout: timeout,
			Logger:          logger,
		})
	}
}
