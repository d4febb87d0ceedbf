// Package jobstore persists podcast job state, metadata, and artifacts
// through an object-store backend. Each job owns a key prefix
// "{jobID}/" holding metadata.json, state.json, and any artifacts the
// pipeline writes under it.
package jobstore

import (
	"time"

	"github.com/castforge/castforge/pkg/podcast"
)

// JobStatus is the lifecycle state of a job. Transitions are one
// directional: QUEUED to RUNNING to DONE or ERROR.
type JobStatus string

const (
	StatusQueued  JobStatus = "QUEUED"
	StatusRunning JobStatus = "RUNNING"
	StatusDone    JobStatus = "DONE"
	StatusError   JobStatus = "ERROR"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// LogEntry is one append-only progress record.
type LogEntry struct {
	Step    string    `json:"step"`
	Percent int       `json:"percent"`
	Message string    `json:"message"`
	TS      time.Time `json:"ts"`
}

// Outputs holds locators for the artifacts of a finished job. Fields
// are set once when the job reaches DONE.
type Outputs struct {
	Script   string `json:"script,omitempty"`
	Chapters string `json:"chapters,omitempty"`
	Audio    string `json:"audio,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// State is the mutable per-job document stored at {jobID}/state.json.
type State struct {
	JobID     string     `json:"jobId"`
	Status    JobStatus  `json:"status"`
	Step      string     `json:"step"`
	Percent   int        `json:"percent"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
	Logs      []LogEntry `json:"logs"`
	Outputs   *Outputs   `json:"outputs,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProviderInfo records which backends produced the job's content.
type ProviderInfo struct {
	Generator   string `json:"generator,omitempty"`
	Synthesizer string `json:"synthesizer,omitempty"`
}

// Timings holds wall-clock durations per pipeline stage, in
// milliseconds.
type Timings struct {
	OutlineMS int64 `json:"outlineMs,omitempty"`
	ScriptMS  int64 `json:"scriptMs,omitempty"`
	TTSMS     int64 `json:"ttsMs,omitempty"`
	TotalMS   int64 `json:"totalMs,omitempty"`
}

// UsageTotals aggregates provider usage across pipeline calls.
type UsageTotals struct {
	InputTokens     int64   `json:"inputTokens,omitempty"`
	OutputTokens    int64   `json:"outputTokens,omitempty"`
	AudioSecondsOut float64 `json:"audioSecondsOut,omitempty"`
}

// Metadata is the immutable job record stored at {jobID}/metadata.json.
// It is written before the QUEUED state so a job is never observable
// without its input.
type Metadata struct {
	JobID     string        `json:"jobId"`
	Input     podcast.Input `json:"input"`
	CreatedAt time.Time     `json:"createdAt"`
	Providers ProviderInfo  `json:"providers,omitempty"`
	Timings   *Timings      `json:"timings,omitempty"`
	Usage     *UsageTotals  `json:"usage,omitempty"`
}

// StatePatch carries the fields UpdateState may change. Nil fields are
// left as stored.
type StatePatch struct {
	Status  *JobStatus
	Percent *int
	Error   *string
	Outputs *Outputs
}

// LogRecord is an optional log line to append alongside a patch.
type LogRecord struct {
	Step    string
	Percent int
	Message string
}
