package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/castforge/castforge/pkg/objstore"
	"github.com/castforge/castforge/pkg/podcast"
)

const (
	stateKey    = "state.json"
	metadataKey = "metadata.json"

	contentTypeJSON = "application/json"
)

// Store reads and writes job documents through an object-store
// backend. It is safe for concurrent use as long as a single process
// owns writes for a given job, which the runner guard enforces.
type Store struct {
	backend objstore.Backend
	now     func() time.Time
}

// New creates a store on the given backend.
func New(backend objstore.Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// NewJobID returns a fresh job identifier.
func NewJobID() string {
	return uuid.NewString()
}

func jobKey(jobID, name string) string {
	return jobID + "/" + name
}

// Init creates a new job record: metadata first, then the QUEUED state
// with an initial log entry at percent 0.
func (s *Store) Init(ctx context.Context, jobID string, input podcast.Input, providers ProviderInfo) (State, error) {
	now := s.now().UTC()

	meta := Metadata{
		JobID:     jobID,
		Input:     input,
		CreatedAt: now,
		Providers: providers,
	}
	if err := s.putJSON(ctx, jobKey(jobID, metadataKey), meta); err != nil {
		return State{}, fmt.Errorf("init job %s: %w", jobID, err)
	}

	state := State{
		JobID:     jobID,
		Status:    StatusQueued,
		Step:      "queued",
		Percent:   0,
		Message:   "Job queued",
		Logs:      []LogEntry{{Step: "queued", Percent: 0, Message: "Job queued", TS: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.putJSON(ctx, jobKey(jobID, stateKey), state); err != nil {
		return State{}, fmt.Errorf("init job %s: %w", jobID, err)
	}
	return state, nil
}

// ReadState returns the current state document for a job.
func (s *Store) ReadState(ctx context.Context, jobID string) (State, error) {
	var state State
	if err := s.getJSON(ctx, jobKey(jobID, stateKey), &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// ReadMetadata returns the job's immutable record.
func (s *Store) ReadMetadata(ctx context.Context, jobID string) (Metadata, error) {
	var meta Metadata
	if err := s.getJSON(ctx, jobKey(jobID, metadataKey), &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// WriteMetadata replaces the job's metadata document. Used to record
// timings and usage when the pipeline finishes.
func (s *Store) WriteMetadata(ctx context.Context, meta Metadata) error {
	return s.putJSON(ctx, jobKey(meta.JobID, metadataKey), meta)
}

// UpdateState applies a patch to the stored state via read-modify-write
// and optionally appends a log entry. The percent never moves backward
// and logs only grow.
func (s *Store) UpdateState(ctx context.Context, jobID string, patch StatePatch, log *LogRecord) (State, error) {
	state, err := s.ReadState(ctx, jobID)
	if err != nil {
		return State{}, err
	}

	if patch.Status != nil {
		state.Status = *patch.Status
	}
	if patch.Percent != nil && *patch.Percent > state.Percent {
		state.Percent = *patch.Percent
	}
	if patch.Error != nil {
		state.Error = *patch.Error
	}
	if patch.Outputs != nil {
		state.Outputs = patch.Outputs
	}
	if log != nil {
		state.Step = log.Step
		state.Message = log.Message
		state.Logs = append(state.Logs, LogEntry{
			Step:    log.Step,
			Percent: log.Percent,
			Message: log.Message,
			TS:      s.now().UTC(),
		})
	}
	state.UpdatedAt = s.now().UTC()

	if err := s.putJSON(ctx, jobKey(jobID, stateKey), state); err != nil {
		return State{}, err
	}
	return state, nil
}

// SetStatus transitions the job and always appends one log entry.
func (s *Store) SetStatus(ctx context.Context, jobID string, status JobStatus, percent int, step, message string) (State, error) {
	return s.UpdateState(ctx, jobID,
		StatePatch{Status: &status, Percent: &percent},
		&LogRecord{Step: step, Percent: percent, Message: message})
}

// AppendLog records progress without changing status.
func (s *Store) AppendLog(ctx context.Context, jobID string, percent int, step, message string) (State, error) {
	return s.UpdateState(ctx, jobID,
		StatePatch{Percent: &percent},
		&LogRecord{Step: step, Percent: percent, Message: message})
}

// SetError moves the job to ERROR at percent 100 with the failure
// message in both the state and the log.
func (s *Store) SetError(ctx context.Context, jobID, message string) (State, error) {
	status := StatusError
	percent := 100
	return s.UpdateState(ctx, jobID,
		StatePatch{Status: &status, Percent: &percent, Error: &message},
		&LogRecord{Step: "error", Percent: percent, Message: message})
}

// SetOutputs records artifact locators without appending a log entry.
func (s *Store) SetOutputs(ctx context.Context, jobID string, outputs Outputs) (State, error) {
	return s.UpdateState(ctx, jobID, StatePatch{Outputs: &outputs}, nil)
}

// SaveFile stores an artifact under the job's prefix and returns its
// locator.
func (s *Store) SaveFile(ctx context.Context, jobID, name string, body []byte, contentType string) (string, error) {
	key := jobKey(jobID, name)
	if err := s.backend.Put(ctx, key, body, contentType); err != nil {
		return "", err
	}
	return s.backend.URL(key), nil
}

// FileURL returns the locator for an artifact without writing it.
func (s *Store) FileURL(jobID, name string) string {
	return s.backend.URL(jobKey(jobID, name))
}

// ReadFile fetches an artifact stored under the job's prefix.
func (s *Store) ReadFile(ctx context.Context, jobID, name string) ([]byte, error) {
	return s.backend.Get(ctx, jobKey(jobID, name))
}

// ListJobIDs enumerates every job with a state document.
func (s *Store) ListJobIDs(ctx context.Context) ([]string, error) {
	keys, err := s.backend.List(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, key := range keys {
		jobID, name, ok := strings.Cut(key, "/")
		if !ok || name != stateKey {
			continue
		}
		if _, dup := seen[jobID]; dup {
			continue
		}
		seen[jobID] = struct{}{}
		ids = append(ids, jobID)
	}
	return ids, nil
}

// DeleteJob removes every object under the job's prefix.
func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	keys, err := s.backend.List(ctx, jobID+"/")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.backend.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.backend.Put(ctx, key, body, contentTypeJSON)
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	body, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
