// Package runner executes the podcast pipeline for one job: outline,
// script, per-section speech synthesis, and audio concatenation, with
// progress written to the job store at every step.
package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/castforge/castforge/pkg/audio"
	"github.com/castforge/castforge/pkg/jobstore"
	"github.com/castforge/castforge/pkg/provider"
	"github.com/castforge/castforge/pkg/script"
)

// Progress percent bands for each pipeline stage.
const (
	percentOutline  = 10
	percentScript   = 30
	percentTTSStart = 60
	percentTTSEnd   = 80
	percentMix      = 85
	percentDone     = 100
)

// Runner owns the pipeline for every job in this process.
type Runner struct {
	store       *jobstore.Store
	generator   provider.Generator
	synthesizer provider.Synthesizer
	guard       *Guard
	logger      *zap.Logger

	// Cleanup runs after each finished job, excluding that job.
	cleanup jobstore.CleanupOptions
}

// New creates a runner. A nil logger falls back to zap's global.
func New(store *jobstore.Store, gen provider.Generator, syn provider.Synthesizer, cleanup jobstore.CleanupOptions, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.L()
	}
	return &Runner{
		store:       store,
		generator:   gen,
		synthesizer: syn,
		guard:       NewGuard(),
		cleanup:     cleanup,
		logger:      logger,
	}
}

// StartIfQueued launches the pipeline in a goroutine when the job is
// still QUEUED and no other goroutine holds it. Returns true when a
// run was started.
func (r *Runner) StartIfQueued(ctx context.Context, jobID string) (bool, error) {
	state, err := r.store.ReadState(ctx, jobID)
	if err != nil {
		return false, err
	}
	if state.Status != jobstore.StatusQueued {
		return false, nil
	}
	if !r.guard.TryAcquire(jobID) {
		return false, nil
	}
	go func() {
		defer r.guard.Release(jobID)
		// Detached from the request context: closing the SSE stream
		// must not abort generation.
		r.Run(context.Background(), jobID)
	}()
	return true, nil
}

// Run executes the whole pipeline synchronously. Any failure moves the
// job to ERROR; Run itself does not return an error because the
// outcome is recorded in the job store.
func (r *Runner) Run(ctx context.Context, jobID string) {
	if err := r.run(ctx, jobID); err != nil {
		r.logger.Error("job failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		if _, serr := r.store.SetError(ctx, jobID, err.Error()); serr != nil {
			r.logger.Error("failed to record job error",
				zap.String("job_id", jobID),
				zap.Error(serr))
		}
	}
	r.sweep(ctx, jobID)
}

func (r *Runner) run(ctx context.Context, jobID string) error {
	started := time.Now()

	meta, err := r.store.ReadMetadata(ctx, jobID)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	input := meta.Input

	// Outline.
	if _, err := r.store.SetStatus(ctx, jobID, jobstore.StatusRunning, percentOutline, "outline", "Generating outline"); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	outlineStart := time.Now()
	outlineRes, err := r.generator.GenerateOutline(ctx, provider.OutlineRequest{Input: input})
	if err != nil {
		return fmt.Errorf("outline generation: %w", err)
	}
	outlineMS := time.Since(outlineStart).Milliseconds()

	usage := jobstore.UsageTotals{}
	addUsage(&usage, outlineRes.Usage)

	// Script.
	if _, err := r.store.AppendLog(ctx, jobID, percentScript, "script", "Writing script"); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	scriptStart := time.Now()
	scriptRes, err := r.generator.GenerateScript(ctx, provider.ScriptRequest{Outline: outlineRes.Outline, Input: input})
	if err != nil {
		return fmt.Errorf("script generation: %w", err)
	}
	scriptMS := time.Since(scriptStart).Milliseconds()
	addUsage(&usage, scriptRes.Usage)

	scriptURL, err := r.store.SaveFile(ctx, jobID, "script.md", []byte(scriptRes.Markdown), "text/markdown")
	if err != nil {
		return fmt.Errorf("save script: %w", err)
	}

	sections := script.ParseSections(scriptRes.Markdown)
	chapters := script.EstimateChapters(scriptRes.Markdown, input, script.DefaultWordsPerMinute)
	chaptersJSON, err := script.MarshalChapters(chapters)
	if err != nil {
		return fmt.Errorf("encode chapters: %w", err)
	}
	chaptersURL, err := r.store.SaveFile(ctx, jobID, "chapters.json", chaptersJSON, "application/json")
	if err != nil {
		return fmt.Errorf("save chapters: %w", err)
	}

	// Speech synthesis, one call per section. Per-section progress
	// divides the 60-80 band by sections completed.
	ttsStart := time.Now()
	if _, err := r.store.AppendLog(ctx, jobID, percentTTSStart, "tts",
		fmt.Sprintf("Synthesizing %d sections", len(sections))); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	buffers := make([][]byte, 0, len(sections))
	var format audio.Format
	for i, section := range sections {
		speech, err := r.synthesizer.Speak(ctx, provider.SpeechRequest{
			Text:     section.Content,
			Language: input.Language,
		})
		if err != nil {
			return fmt.Errorf("synthesize section %d: %w", i+1, err)
		}
		addUsage(&usage, speech.Usage)

		f, ok := audio.FormatFromMIME(speech.MIMEType)
		if !ok {
			return fmt.Errorf("unsupported audio type %q", speech.MIMEType)
		}
		if i == 0 {
			format = f
		} else if f != format {
			return &audio.FormatMismatchError{
				Index:  i + 1,
				Detail: fmt.Sprintf("section is %s, previous sections are %s", f, format),
			}
		}

		name := fmt.Sprintf("sections/section_%02d.%s", i+1, format.Extension())
		if _, err := r.store.SaveFile(ctx, jobID, name, speech.Audio, format.MIMEType()); err != nil {
			return fmt.Errorf("save section %d: %w", i+1, err)
		}
		buffers = append(buffers, speech.Audio)

		band := percentTTSEnd - percentTTSStart
		percent := percentTTSStart + int(math.Round(float64((i+1)*band)/float64(len(sections))))
		msg := fmt.Sprintf("Synthesized section %d/%d", i+1, len(sections))
		if _, err := r.store.AppendLog(ctx, jobID, percent, "tts", msg); err != nil {
			return fmt.Errorf("update state: %w", err)
		}
	}
	ttsMS := time.Since(ttsStart).Milliseconds()

	// Concatenate.
	if _, err := r.store.AppendLog(ctx, jobID, percentMix, "mix", "Concatenating audio"); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	combined, err := audio.Concat(buffers, format)
	if err != nil {
		return fmt.Errorf("concatenate audio: %w", err)
	}
	audioURL, err := r.store.SaveFile(ctx, jobID, "audio."+format.Extension(), combined, format.MIMEType())
	if err != nil {
		return fmt.Errorf("save audio: %w", err)
	}

	// Record timings and usage on the metadata document.
	meta.Timings = &jobstore.Timings{
		OutlineMS: outlineMS,
		ScriptMS:  scriptMS,
		TTSMS:     ttsMS,
		TotalMS:   time.Since(started).Milliseconds(),
	}
	meta.Usage = &usage
	if err := r.store.WriteMetadata(ctx, meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	metadataURL := r.store.FileURL(jobID, "metadata.json")

	if _, err := r.store.SetOutputs(ctx, jobID, jobstore.Outputs{
		Script:   scriptURL,
		Chapters: chaptersURL,
		Audio:    audioURL,
		Metadata: metadataURL,
	}); err != nil {
		return fmt.Errorf("set outputs: %w", err)
	}
	if _, err := r.store.SetStatus(ctx, jobID, jobstore.StatusDone, percentDone, "finalize", "Podcast ready"); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	r.logger.Info("job completed",
		zap.String("job_id", jobID),
		zap.Int("sections", len(sections)),
		zap.String("format", string(format)),
		zap.Int64("total_ms", meta.Timings.TotalMS))
	return nil
}

// Sweep runs the retention cleanup in the background, never deleting
// the given job. Called on job creation so stale jobs do not pile up
// between completions.
func (r *Runner) Sweep(jobID string) {
	go r.sweep(context.Background(), jobID)
}

// sweep runs the retention cleanup, never deleting the job that just
// finished.
func (r *Runner) sweep(ctx context.Context, jobID string) {
	opts := r.cleanup
	opts.ExcludeJobIDs = append(append([]string{}, opts.ExcludeJobIDs...), jobID)
	result, err := r.store.Cleanup(ctx, opts)
	if err != nil {
		r.logger.Warn("cleanup sweep failed", zap.Error(err))
		return
	}
	for _, cerr := range result.Errors {
		r.logger.Warn("cleanup error", zap.Error(cerr))
	}
	if len(result.Deleted) > 0 {
		r.logger.Info("cleanup removed jobs", zap.Strings("job_ids", result.Deleted))
	}
}

func addUsage(total *jobstore.UsageTotals, u *provider.Usage) {
	if u == nil {
		return
	}
	total.InputTokens += int64(u.InputTokens)
	total.OutputTokens += int64(u.OutputTokens)
	total.AudioSecondsOut += u.AudioSecondsOut
}
