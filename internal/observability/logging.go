// Package observability wires zap logging: a structured logger for the
// server and a console logger for CLI output.
package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the console logger used by commands. Replaced by Init.
var CLILogger = zap.NewNop()

// Init builds the process loggers from the configured level and
// profile. Profile CONSOLE gives human-readable output, STRUCTURED
// gives JSON. The structured logger is installed as zap's global.
func Init(level, profile string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if strings.EqualFold(profile, "CONSOLE") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	cliCfg := zap.NewDevelopmentConfig()
	cliCfg.Level = zap.NewAtomicLevelAt(lvl)
	cliCfg.EncoderConfig.TimeKey = ""
	cliCfg.EncoderConfig.CallerKey = ""
	cli, err := cliCfg.Build()
	if err != nil {
		return fmt.Errorf("build cli logger: %w", err)
	}
	CLILogger = cli
	return nil
}

// Sync flushes buffered log entries. Safe to call at exit.
func Sync() {
	_ = zap.L().Sync()
	_ = CLILogger.Sync()
}
