package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/castforge/castforge/internal/errors"
	"github.com/castforge/castforge/internal/runner"
	"github.com/castforge/castforge/pkg/jobstore"
	"github.com/castforge/castforge/pkg/podcast"
)

// API bundles the dependencies the job handlers need.
type API struct {
	Store        *jobstore.Store
	Runner       *runner.Runner
	PollInterval time.Duration
	Logger       *zap.Logger

	// Providers is recorded on each new job's metadata.
	Providers jobstore.ProviderInfo
}

// NewAPI wires the handler set. A nil logger falls back to zap's
// global; a zero poll interval defaults to one second.
func NewAPI(store *jobstore.Store, r *runner.Runner, pollInterval time.Duration, providers jobstore.ProviderInfo, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.L()
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &API{
		Store:        store,
		Runner:       r,
		PollInterval: pollInterval,
		Providers:    providers,
		Logger:       logger,
	}
}

type createJobResponse struct {
	JobID  string             `json:"jobId"`
	Status jobstore.JobStatus `json:"status"`
}

// CreateJob handles POST /api/jobs. The job is stored QUEUED; the
// pipeline starts when the first progress stream connects.
func (a *API) CreateJob(w http.ResponseWriter, r *http.Request) {
	var raw podcast.RawInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		apperrors.WriteError(w, r, http.StatusBadRequest, apperrors.CodeBadRequest, "invalid JSON body", nil)
		return
	}

	input, fieldErrs := podcast.Validate(raw)
	if fieldErrs != nil {
		respondWithError(w, r, fieldErrs)
		return
	}

	jobID := jobstore.NewJobID()
	state, err := a.Store.Init(r.Context(), jobID, input, a.Providers)
	if err != nil {
		a.Logger.Error("failed to create job", zap.Error(err))
		respondWithError(w, r, err)
		return
	}

	a.Logger.Info("job created",
		zap.String("job_id", jobID),
		zap.String("topic", input.Topic),
		zap.Int("duration_minutes", input.DurationMinutes))

	// Opportunistic retention sweep; the new job is never a candidate.
	a.Runner.Sweep(jobID)

	writeJSON(w, http.StatusCreated, createJobResponse{JobID: jobID, Status: state.Status})
}

// GetJob handles GET /api/jobs/{jobID} with the current state
// document.
func (a *API) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	state, err := a.Store.ReadState(r.Context(), jobID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GetJobMetadata handles GET /api/jobs/{jobID}/metadata.
func (a *API) GetJobMetadata(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	meta, err := a.Store.ReadMetadata(r.Context(), jobID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
