package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/castforge/castforge/internal/observability"
	"github.com/castforge/castforge/internal/runner"
	"github.com/castforge/castforge/internal/server"
	"github.com/castforge/castforge/internal/server/handlers"
	"github.com/castforge/castforge/pkg/jobstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the podcast generation HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	defer observability.Sync()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to open storage backend", err)
	}
	defer func() { _ = backend.Close() }()

	gen, syn, providerInfo, err := buildProviders(cfg)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to resolve providers", err)
	}

	store := jobstore.New(backend)
	jobRunner := runner.New(store, gen, syn, jobstore.CleanupOptions{
		MaxAgeHours:                cfg.Jobs.Cleanup.MaxAgeHours,
		DeleteIncomplete:           cfg.Jobs.Cleanup.DeleteIncomplete,
		IncompleteThresholdMinutes: cfg.Jobs.Cleanup.IncompleteThresholdMinutes,
	}, zap.L())

	api := handlers.NewAPI(store, jobRunner, cfg.Jobs.PollInterval, providerInfo, zap.L())

	health := handlers.InitHealthManager(versionInfo.Version)
	health.RegisterChecker("storage", storageHealthChecker{backend: backend})

	srv := server.New(server.Options{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		API:          api,
		Logger:       zap.L(),
	})

	observability.CLILogger.Info("Starting server",
		zap.String("addr", srv.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("generators", providerInfo.Generator),
		zap.String("synthesizers", providerInfo.Synthesizer))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	observability.CLILogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return exitError(foundry.ExitSignalInt, "Shutdown incomplete", err)
	}
	return nil
}
