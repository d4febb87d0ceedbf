package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/castforge/castforge/internal/observability"
	"github.com/castforge/castforge/pkg/jobstore"
)

var (
	cleanupMaxAgeHours   float64
	cleanupIncomplete    bool
	cleanupStaleMinutes  float64
	cleanupExcludeJobIDs []string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete jobs past the retention window",
	Long: `cleanup scans the job store and deletes terminal jobs older than the
age limit. With --incomplete it also removes queued or running jobs
that have not progressed within the stale threshold.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().Float64Var(&cleanupMaxAgeHours, "max-age-hours", 24, "delete finished jobs older than this")
	cleanupCmd.Flags().BoolVar(&cleanupIncomplete, "incomplete", false, "also delete stalled queued/running jobs")
	cleanupCmd.Flags().Float64Var(&cleanupStaleMinutes, "stale-minutes", 30, "staleness threshold for --incomplete")
	cleanupCmd.Flags().StringSliceVar(&cleanupExcludeJobIDs, "exclude", nil, "job IDs to keep regardless of age")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	store := jobstore.New(backend)
	result, err := store.Cleanup(ctx, jobstore.CleanupOptions{
		MaxAgeHours:                cleanupMaxAgeHours,
		DeleteIncomplete:           cleanupIncomplete,
		IncompleteThresholdMinutes: cleanupStaleMinutes,
		ExcludeJobIDs:              cleanupExcludeJobIDs,
	})
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Cleanup failed", err)
	}

	for _, cerr := range result.Errors {
		observability.CLILogger.Warn("Cleanup error", zap.Error(cerr))
	}
	observability.CLILogger.Info("Cleanup finished",
		zap.Int("deleted", len(result.Deleted)),
		zap.Strings("job_ids", result.Deleted),
		zap.Int("errors", len(result.Errors)))
	return nil
}
