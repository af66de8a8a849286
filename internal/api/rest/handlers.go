package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"github.com/fortuna/themis/internal/averages"
	"github.com/fortuna/themis/internal/jobs"
	"github.com/fortuna/themis/internal/league"
	"github.com/fortuna/themis/internal/reconcile"
)

// PassTrigger starts reconciliation passes and exposes the latest
// summary. Implemented by the scheduler.
type PassTrigger interface {
	Trigger(ctx context.Context) (jobs.Job, error)
	Latest() (reconcile.PassSummary, bool)
}

// Handler contains dependencies for HTTP handlers. Averages is nil when
// no archive bucket is configured.
type Handler struct {
	trigger  PassTrigger
	jobStore *jobs.Store
	averages *averages.Collector
}

func NewHandler(trigger PassTrigger, jobStore *jobs.Store, avg *averages.Collector) *Handler {
	return &Handler{
		trigger:  trigger,
		jobStore: jobStore,
		averages: avg,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "themis",
	})
}

// TriggerPass enqueues a reconciliation pass and returns its job id. A
// pass already in flight yields 409 rather than a second concurrent run.
func (h *Handler) TriggerPass(w http.ResponseWriter, r *http.Request) {
	job, err := h.trigger.Trigger(r.Context())
	if err != nil {
		if errors.Is(err, reconcile.ErrPassInProgress) {
			respondError(w, http.StatusConflict, "A pass is already running", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to start pass", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// GetJob returns one job record by id.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	job, err := h.jobStore.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch job", err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// LatestPass returns the most recent pass summary.
func (h *Handler) LatestPass(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.trigger.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "No pass has completed yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetAverages returns rolling player averages for a league, computed
// from the archived player data.
func (h *Handler) GetAverages(w http.ResponseWriter, r *http.Request) {
	if h.averages == nil {
		respondError(w, http.StatusServiceUnavailable, "Archive not configured", nil)
		return
	}

	slug := r.URL.Query().Get("league")
	lg, ok := league.FromSlug(slug)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unknown league", nil)
		return
	}

	avgs, err := h.averages.Collect(r.Context(), lg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute averages", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":  lg.Slug,
		"players": avgs,
		"count":   len(avgs),
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
