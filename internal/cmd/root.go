// Package cmd wires the CLI: the serve daemon, the cleanup sweep, and
// version output.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castforge/castforge/internal/config"
	"github.com/castforge/castforge/internal/observability"
	"github.com/castforge/castforge/internal/server/handlers"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{"dev", "HEAD", "unknown"}

// SetVersionInfo records the build metadata injected via ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	handlers.SetVersionInfo(version, commit, buildDate)
}

var (
	flagLogLevel string
	flagPort     int
	flagHost     string
)

var rootCmd = &cobra.Command{
	Use:   "castforge",
	Short: "Async podcast generation service",
	Long: `castforge turns a topic into a finished podcast episode: it plans an
outline, writes a sectioned script, synthesizes speech per section, and
concatenates the audio, streaming progress over SSE while the job runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "http listen port")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "http listen host")
}

// loadConfig merges CLI flags over the file/env configuration and
// initializes logging.
func loadConfig(ctx context.Context) (*config.Config, error) {
	overrides := map[string]any{}
	server := map[string]any{}
	if flagPort != 0 {
		server["port"] = flagPort
	}
	if flagHost != "" {
		server["host"] = flagHost
	}
	if len(server) > 0 {
		overrides["server"] = server
	}
	if flagLogLevel != "" {
		overrides["logging"] = map[string]any{"level": flagLogLevel}
	}

	cfg, err := config.Load(ctx, overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return fmt.Errorf("%s: %w (exit code %d)", message, err, code)
}
