package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castforge/castforge/pkg/objstore"
	"github.com/castforge/castforge/pkg/objstore/file"
	"github.com/castforge/castforge/pkg/podcast"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	backend, err := file.New(file.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return New(backend)
}

func testInput() podcast.Input {
	raw := podcast.RawInput{Topic: "The history of radio"}
	input, errs := podcast.Validate(raw)
	if errs != nil {
		panic(errs)
	}
	return input
}

func TestInitWritesMetadataAndQueuedState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	state, err := store.Init(ctx, jobID, testInput(), ProviderInfo{Generator: "mock", Synthesizer: "mock"})
	require.NoError(t, err)

	assert.Equal(t, StatusQueued, state.Status)
	assert.Equal(t, "queued", state.Step)
	assert.Equal(t, 0, state.Percent)
	assert.Equal(t, "Job queued", state.Message)
	require.Len(t, state.Logs, 1)
	assert.Equal(t, "queued", state.Logs[0].Step)
	assert.Equal(t, "Job queued", state.Logs[0].Message)

	meta, err := store.ReadMetadata(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, meta.JobID)
	assert.Equal(t, "The history of radio", meta.Input.Topic)
	assert.Equal(t, "mock", meta.Providers.Generator)
}

func TestReadStateMissingJob(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadState(context.Background(), "no-such-job")
	require.Error(t, err)
	assert.True(t, objstore.IsNotFound(err))
}

func TestPercentNeverMovesBackward(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)

	state, err := store.AppendLog(ctx, jobID, 60, "tts", "Synthesizing section 1/3")
	require.NoError(t, err)
	assert.Equal(t, 60, state.Percent)

	state, err = store.AppendLog(ctx, jobID, 30, "script", "late update")
	require.NoError(t, err)
	assert.Equal(t, 60, state.Percent, "lower percent must not regress the stored value")
}

func TestLogsOnlyGrow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)

	var prev []LogEntry
	steps := []struct {
		percent int
		step    string
	}{{10, "outline"}, {30, "script"}, {60, "tts"}, {85, "mix"}}
	for _, s := range steps {
		state, err := store.AppendLog(ctx, jobID, s.percent, s.step, s.step)
		require.NoError(t, err)
		require.Greater(t, len(state.Logs), len(prev))
		for i := range prev {
			assert.Equal(t, prev[i].Step, state.Logs[i].Step, "existing entries must not change")
		}
		prev = state.Logs
	}
}

func TestSetStatusAppendsLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)

	state, err := store.SetStatus(ctx, jobID, StatusRunning, 5, "start", "Starting generation")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, state.Status)
	assert.Equal(t, "start", state.Step)
	assert.Equal(t, "Starting generation", state.Message)
	require.Len(t, state.Logs, 2)
	assert.Equal(t, "start", state.Logs[1].Step)
}

func TestSetErrorTerminalAtFullPercent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)

	state, err := store.SetError(ctx, jobID, "synthesis failed: all providers unavailable")
	require.NoError(t, err)
	assert.Equal(t, StatusError, state.Status)
	assert.Equal(t, 100, state.Percent)
	assert.Equal(t, "synthesis failed: all providers unavailable", state.Error)
	assert.True(t, state.Status.Terminal())
	last := state.Logs[len(state.Logs)-1]
	assert.Equal(t, "error", last.Step)
}

func TestSetOutputsDoesNotLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	before, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)

	state, err := store.SetOutputs(ctx, jobID, Outputs{
		Script: "file:///tmp/" + jobID + "/script.md",
		Audio:  "file:///tmp/" + jobID + "/audio.wav",
	})
	require.NoError(t, err)
	require.NotNil(t, state.Outputs)
	assert.Len(t, state.Logs, len(before.Logs))
}

func TestSaveFileReturnsLocator(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	jobID := NewJobID()

	url, err := store.SaveFile(ctx, jobID, "script.md", []byte("# Show"), "text/markdown")
	require.NoError(t, err)
	assert.Contains(t, url, jobID+"/script.md")

	body, err := store.ReadFile(ctx, jobID, "script.md")
	require.NoError(t, err)
	assert.Equal(t, "# Show", string(body))
}

func TestListJobIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, b := NewJobID(), NewJobID()
	_, err := store.Init(ctx, a, testInput(), ProviderInfo{})
	require.NoError(t, err)
	_, err = store.Init(ctx, b, testInput(), ProviderInfo{})
	require.NoError(t, err)

	ids, err := store.ListJobIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}

func TestCleanupSweep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store.now = func() time.Time { return clock }

	// Old finished job, two days back.
	oldDone := NewJobID()
	clock = base.Add(-48 * time.Hour)
	_, err := store.Init(ctx, oldDone, testInput(), ProviderInfo{})
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, oldDone, StatusDone, 100, "finalize", "Podcast ready")
	require.NoError(t, err)

	// Stalled RUNNING job, no update for an hour.
	stalled := NewJobID()
	clock = base.Add(-1 * time.Hour)
	_, err = store.Init(ctx, stalled, testInput(), ProviderInfo{})
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, stalled, StatusRunning, 10, "outline", "Generating outline")
	require.NoError(t, err)

	// Fresh job created moments ago.
	fresh := NewJobID()
	clock = base.Add(-1 * time.Minute)
	_, err = store.Init(ctx, fresh, testInput(), ProviderInfo{})
	require.NoError(t, err)

	clock = base
	result, err := store.Cleanup(ctx, CleanupOptions{
		MaxAgeHours:                24,
		DeleteIncomplete:           true,
		IncompleteThresholdMinutes: 30,
		ExcludeJobIDs:              []string{fresh},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.ElementsMatch(t, []string{oldDone, stalled}, result.Deleted)

	_, err = store.ReadState(ctx, oldDone)
	assert.True(t, objstore.IsNotFound(err))
	_, err = store.ReadState(ctx, fresh)
	assert.NoError(t, err)
}

func TestCleanupKeepsRecentTerminalJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jobID := NewJobID()
	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, jobID, StatusDone, 100, "finalize", "Podcast ready")
	require.NoError(t, err)

	result, err := store.Cleanup(ctx, CleanupOptions{MaxAgeHours: 24})
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
}

func TestCleanupLeavesRunningJobsWhenIncompleteDisabled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	clock := base.Add(-2 * time.Hour)
	store.now = func() time.Time { return clock }

	jobID := NewJobID()
	_, err := store.Init(ctx, jobID, testInput(), ProviderInfo{})
	require.NoError(t, err)
	_, err = store.SetStatus(ctx, jobID, StatusRunning, 30, "script", "Writing script")
	require.NoError(t, err)

	clock = base
	result, err := store.Cleanup(ctx, CleanupOptions{MaxAgeHours: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Deleted, "non-terminal jobs need DeleteIncomplete")
}
