// Package cmd holds shared startup plumbing for service entry points.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/modelhub/internal/platform/config"
	"github.com/louisbranch/modelhub/internal/platform/otel"
)

// ServiceWeb identifies the web service in telemetry and logs.
const ServiceWeb = "web"

const defaultShutdownTimeout = 5 * time.Second

type runSettings struct {
	shutdownTimeout time.Duration
	logger          *log.Logger
}

// RunOption customizes RunWithTelemetry.
type RunOption func(*runSettings)

// WithShutdownTimeout bounds how long pending spans may take to flush.
func WithShutdownTimeout(timeout time.Duration) RunOption {
	return func(s *runSettings) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// WithLogger routes lifecycle messages to logger.
func WithLogger(logger *log.Logger) RunOption {
	return func(s *runSettings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseConfigFromArgs loads defaults from env, lets bind register flags
// over those defaults, and then parses args.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string, bind func(*flag.FlagSet, *T)) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	if bind != nil {
		bind(fs, cfg)
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry installs tracing for service, executes run and flushes
// spans once run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error, opts ...RunOption) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	settings := runSettings{shutdownTimeout: defaultShutdownTimeout, logger: log.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("%s telemetry: %w", service, err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), settings.shutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			settings.logger.Printf("otel shutdown service=%s err=%v", service, err)
		}
	}()
	return run(ctx)
}
