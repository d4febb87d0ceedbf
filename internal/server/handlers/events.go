package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/castforge/castforge/pkg/jobstore"
)

// progressEvent is the payload of each SSE data frame.
type progressEvent struct {
	Type    string             `json:"type"` // "log", "snapshot", "done", "error"
	Status  jobstore.JobStatus `json:"status,omitempty"`
	Percent int                `json:"percent"`
	Step    string             `json:"step,omitempty"`
	Message string             `json:"message,omitempty"`
	TS      time.Time          `json:"ts,omitempty"`
	Error   string             `json:"error,omitempty"`
	Outputs *jobstore.Outputs  `json:"outputs,omitempty"`
	Done    bool               `json:"done,omitempty"`
}

// StreamEvents handles GET /api/jobs/{jobID}/events. It polls the job
// state and emits one event per new log entry, a snapshot when nothing
// changed, and a final done event when the job reaches a terminal
// status. Connecting to a QUEUED job starts the pipeline.
func (a *API) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, r, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	jobID := chi.URLParam(r, "jobID")
	ctx := r.Context()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Reconnect hint for EventSource clients.
	_, _ = fmt.Fprint(w, "retry: 1000\n\n")
	flusher.Flush()

	state, err := a.Store.ReadState(ctx, jobID)
	if err != nil {
		writeEvent(w, flusher, progressEvent{Type: "error", Error: "job not found", Percent: 0})
		return
	}

	if state.Status == jobstore.StatusQueued {
		if started, err := a.Runner.StartIfQueued(ctx, jobID); err != nil {
			a.Logger.Warn("failed to start job", zap.String("job_id", jobID), zap.Error(err))
		} else if started {
			a.Logger.Info("job started by progress stream", zap.String("job_id", jobID))
		}
	}

	// Replay existing log entries so a late subscriber sees history.
	sent := 0
	sent = a.emitNewLogs(w, flusher, state, sent)
	if state.Status.Terminal() {
		writeEvent(w, flusher, doneEvent(state))
		return
	}

	ticker := time.NewTicker(a.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err = a.Store.ReadState(ctx, jobID)
		if err != nil {
			writeEvent(w, flusher, progressEvent{Type: "error", Error: "job state unavailable"})
			return
		}

		before := sent
		sent = a.emitNewLogs(w, flusher, state, sent)
		if sent == before && !state.Status.Terminal() {
			writeEvent(w, flusher, progressEvent{
				Type:    "snapshot",
				Status:  state.Status,
				Percent: state.Percent,
				Step:    state.Step,
				Message: state.Message,
			})
		}

		if state.Status.Terminal() {
			writeEvent(w, flusher, doneEvent(state))
			return
		}
	}
}

// emitNewLogs sends one event per log entry past the already-sent
// index and returns the new index.
func (a *API) emitNewLogs(w http.ResponseWriter, flusher http.Flusher, state jobstore.State, sent int) int {
	for ; sent < len(state.Logs); sent++ {
		entry := state.Logs[sent]
		writeEvent(w, flusher, progressEvent{
			Type:    "log",
			Status:  state.Status,
			Percent: entry.Percent,
			Step:    entry.Step,
			Message: entry.Message,
			TS:      entry.TS,
		})
	}
	return sent
}

func doneEvent(state jobstore.State) progressEvent {
	return progressEvent{
		Type:    "done",
		Status:  state.Status,
		Percent: state.Percent,
		Error:   state.Error,
		Outputs: state.Outputs,
		Done:    true,
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event progressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
