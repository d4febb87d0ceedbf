package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/castforge/castforge/internal/errors"
	"github.com/castforge/castforge/pkg/audio"
)

// GetScript handles GET /api/jobs/{jobID}/script.
func (a *API) GetScript(w http.ResponseWriter, r *http.Request) {
	a.serveArtifact(w, r, "script.md", "text/markdown; charset=utf-8")
}

// GetChapters handles GET /api/jobs/{jobID}/chapters.
func (a *API) GetChapters(w http.ResponseWriter, r *http.Request) {
	a.serveArtifact(w, r, "chapters.json", "application/json")
}

// GetAudio handles GET /api/jobs/{jobID}/audio. The container format
// is whatever the synthesizer produced, so both extensions are tried.
func (a *API) GetAudio(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	for _, format := range []audio.Format{audio.FormatWAV, audio.FormatMP3} {
		body, err := a.Store.ReadFile(r.Context(), jobID, "audio."+format.Extension())
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", format.MIMEType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	// Not produced yet or job unknown; either way the artifact is
	// absent.
	if _, err := a.Store.ReadState(r.Context(), jobID); err != nil {
		respondWithError(w, r, err)
		return
	}
	apperrors.WriteError(w, r, http.StatusNotFound, apperrors.CodeNotFound, "audio not available yet", nil)
}

func (a *API) serveArtifact(w http.ResponseWriter, r *http.Request, name, contentType string) {
	jobID := chi.URLParam(r, "jobID")
	body, err := a.Store.ReadFile(r.Context(), jobID, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
