package jobstore

import (
	"context"
	"fmt"
	"time"
)

// CleanupOptions controls the retention sweep.
type CleanupOptions struct {
	// MaxAgeHours deletes terminal jobs older than this. Zero disables
	// age-based deletion. QUEUED and RUNNING jobs are never deleted by
	// age alone; only the staleness rule below removes them.
	MaxAgeHours float64

	// DeleteIncomplete also removes QUEUED or RUNNING jobs that have
	// not progressed within IncompleteThresholdMinutes.
	DeleteIncomplete           bool
	IncompleteThresholdMinutes float64

	// ExcludeJobIDs are never deleted regardless of age.
	ExcludeJobIDs []string
}

// CleanupResult reports what the sweep did. Per-job failures are
// collected rather than aborting the sweep.
type CleanupResult struct {
	Deleted []string
	Errors  []error
}

// Cleanup scans every job and deletes those past retention. Jobs whose
// state cannot be read, and jobs that fail to delete, are recorded as
// errors and the sweep continues.
func (s *Store) Cleanup(ctx context.Context, opts CleanupOptions) (CleanupResult, error) {
	excluded := make(map[string]struct{}, len(opts.ExcludeJobIDs))
	for _, id := range opts.ExcludeJobIDs {
		excluded[id] = struct{}{}
	}

	ids, err := s.ListJobIDs(ctx)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("cleanup: list jobs: %w", err)
	}

	var result CleanupResult
	now := s.now().UTC()
	maxAge := time.Duration(opts.MaxAgeHours * float64(time.Hour))
	staleAfter := time.Duration(opts.IncompleteThresholdMinutes * float64(time.Minute))

	for _, jobID := range ids {
		if _, skip := excluded[jobID]; skip {
			continue
		}
		state, err := s.ReadState(ctx, jobID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("job %s: read state: %w", jobID, err))
			continue
		}

		if !shouldDelete(state, now, maxAge, opts.DeleteIncomplete, staleAfter) {
			continue
		}
		if err := s.DeleteJob(ctx, jobID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("job %s: delete: %w", jobID, err))
			continue
		}
		result.Deleted = append(result.Deleted, jobID)
	}
	return result, nil
}

func shouldDelete(state State, now time.Time, maxAge time.Duration, deleteIncomplete bool, staleAfter time.Duration) bool {
	if state.Status.Terminal() {
		return maxAge > 0 && now.Sub(state.CreatedAt) > maxAge
	}
	if !deleteIncomplete || staleAfter <= 0 {
		return false
	}
	return now.Sub(state.UpdatedAt) > staleAfter
}
