package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/league"
)

func TestListOpenEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/betting-events", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("league"))
		assert.Equal(t, "true", r.URL.Query().Get("open"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]Event{
			{ID: 1, PlayerName: "Luka Doncic", StatType: "Points", LeagueID: 7},
			{ID: 2, PlayerName: "Kyrie Irving", StatType: "Assists", LeagueID: 7, IsComplete: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sekrit", time.Second, zap.NewNop())
	events, err := client.ListOpenEvents(context.Background(), league.NBA)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Open())
	assert.False(t, events[1].Open())
}

func TestGetEvent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/betting-events/42", r.URL.Path)
		json.NewEncoder(w).Encode(Event{ID: 42, PlayerName: "Josh Allen", StatType: "Pass Yds", LeagueID: 9})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, zap.NewNop())
	event, err := client.GetEvent(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Josh Allen", event.PlayerName)
}

func TestSubmitBatch(t *testing.T) {
	t.Parallel()

	var received struct {
		Mutations []Mutation `json:"mutations"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/betting-events/bulk-update", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sekrit", time.Second, zap.NewNop())
	err := client.SubmitBatch(context.Background(), []Mutation{
		{EventID: 1, Action: ActionUpdate, Result: Float64(16)},
		{EventID: 2, Action: ActionDNP},
	})
	require.NoError(t, err)

	require.Len(t, received.Mutations, 2)
	assert.Equal(t, ActionUpdate, received.Mutations[0].Action)
	require.NotNil(t, received.Mutations[0].Result)
	assert.Equal(t, 16.0, *received.Mutations[0].Result)
	assert.Nil(t, received.Mutations[1].Result)
}

func TestSubmitBatchEmptyIsNoop(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, zap.NewNop())
	require.NoError(t, client.SubmitBatch(context.Background(), nil))
	assert.False(t, called)
}

func TestSubmitBatchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, zap.NewNop())
	err := client.SubmitBatch(context.Background(), []Mutation{{EventID: 1, Action: ActionUpdate}})
	assert.Error(t, err)
}
