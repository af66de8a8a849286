package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/league"
)

func newTestClient(base string) *Client {
	return NewClient(Config{
		ScoreboardBase: base,
		BoxscoreBase:   base,
		RequestsPerSec: 1000,
	}, zap.NewNop())
}

func TestFetchScoreboard(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/basketball/nba/scoreboard", r.URL.Path)
		assert.Equal(t, "20260115", r.URL.Query().Get("dates"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	date := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	doc, err := client.FetchScoreboard(context.Background(), league.NBA, date)
	require.NoError(t, err)
	assert.Contains(t, doc, "events")
}

func TestFetchBoxscore(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfl/boxscore", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("xhr"))
		assert.Equal(t, "401547417", r.URL.Query().Get("gameId"))
		w.Write([]byte(`{"gamepackageJSON": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	doc, err := client.FetchBoxscore(context.Background(), league.NFL, "401547417")
	require.NoError(t, err)
	assert.Contains(t, doc, "gamepackageJSON")
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchBoxscore(context.Background(), league.NBA, "g1")
	assert.Error(t, err)
}

func TestFetchMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchScoreboard(context.Background(), league.NBA, time.Now())
	assert.Error(t, err)
}
