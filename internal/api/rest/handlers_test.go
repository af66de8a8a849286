package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/themis/internal/jobs"
	"github.com/fortuna/themis/internal/reconcile"
)

type fakeTrigger struct {
	job     jobs.Job
	err     error
	summary *reconcile.PassSummary
}

func (f *fakeTrigger) Trigger(context.Context) (jobs.Job, error) {
	return f.job, f.err
}

func (f *fakeTrigger) Latest() (reconcile.PassSummary, bool) {
	if f.summary == nil {
		return reconcile.PassSummary{}, false
	}
	return *f.summary, true
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&fakeTrigger{}, nil, nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestTriggerPass(t *testing.T) {
	t.Parallel()

	trigger := &fakeTrigger{job: jobs.Job{ID: "job-1", Status: jobs.StatusPending}}
	handler := NewHandler(trigger, nil, nil)

	rec := httptest.NewRecorder()
	handler.TriggerPass(rec, httptest.NewRequest(http.MethodPost, "/api/v1/passes", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "job-1", body["job_id"])
}

func TestTriggerPassAlreadyRunning(t *testing.T) {
	t.Parallel()

	trigger := &fakeTrigger{err: reconcile.ErrPassInProgress}
	handler := NewHandler(trigger, nil, nil)

	rec := httptest.NewRecorder()
	handler.TriggerPass(rec, httptest.NewRequest(http.MethodPost, "/api/v1/passes", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLatestPass(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&fakeTrigger{}, nil, nil)
	rec := httptest.NewRecorder()
	handler.LatestPass(rec, httptest.NewRequest(http.MethodGet, "/api/v1/passes/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	summary := &reconcile.PassSummary{
		StartedAt: time.Now().UTC(),
		Leagues: map[string]reconcile.LeagueResult{
			"nba": {Status: "success", GameCount: 3},
		},
	}
	handler = NewHandler(&fakeTrigger{summary: summary}, nil, nil)
	rec = httptest.NewRecorder()
	handler.LatestPass(rec, httptest.NewRequest(http.MethodGet, "/api/v1/passes/latest", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var got reconcile.PassSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Leagues["nba"].GameCount)
}

func TestGetAverages(t *testing.T) {
	t.Parallel()

	handler := NewHandler(&fakeTrigger{}, nil, nil)

	// No archive configured.
	rec := httptest.NewRecorder()
	handler.GetAverages(rec, httptest.NewRequest(http.MethodGet, "/api/v1/averages?league=nba", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
