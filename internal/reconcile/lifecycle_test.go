package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/themis/internal/backend"
	"github.com/fortuna/themis/internal/boxscore"
)

func TestDecideCompletesOnFinal(t *testing.T) {
	t.Parallel()

	event := backend.Event{ID: 42}
	m := Decide(event, boxscore.StatusFinal, 27)

	require.NotNil(t, m)
	assert.Equal(t, backend.ActionComplete, m.Action)
	assert.Equal(t, 42, m.EventID)
	require.NotNil(t, m.Result)
	assert.Equal(t, 27.0, *m.Result)
}

func TestDecideUpdatesWhileLive(t *testing.T) {
	t.Parallel()

	event := backend.Event{ID: 7, InProgress: true}

	for _, status := range []boxscore.Status{boxscore.StatusInProgress, boxscore.StatusHalftime} {
		m := Decide(event, status, 16)
		require.NotNil(t, m, "status %s", status)
		assert.Equal(t, backend.ActionUpdate, m.Action)
		require.NotNil(t, m.Result)
		assert.Equal(t, 16.0, *m.Result)
	}
}

func TestDecideNoopStatuses(t *testing.T) {
	t.Parallel()

	event := backend.Event{ID: 7}

	assert.Nil(t, Decide(event, boxscore.StatusScheduled, 10))
	assert.Nil(t, Decide(event, boxscore.StatusUnknown, 10))
}

func TestDecideIgnoresCompleteEvents(t *testing.T) {
	t.Parallel()

	event := backend.Event{ID: 7, IsComplete: true}
	assert.Nil(t, Decide(event, boxscore.StatusFinal, 10))
}

func TestDecideNotFoundAfterGracePeriod(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)
	event := backend.Event{ID: 9, StartTime: ref.Add(-4 * time.Hour)}

	m := DecideNotFound(event, ref)
	require.NotNil(t, m)
	assert.Equal(t, backend.ActionDNP, m.Action)
	assert.Nil(t, m.Result)
}

func TestDecideNotFoundWithinGracePeriod(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)

	// Game likely not started; revisit next pass.
	recent := backend.Event{ID: 9, StartTime: ref.Add(-time.Hour)}
	assert.Nil(t, DecideNotFound(recent, ref))

	future := backend.Event{ID: 10, StartTime: ref.Add(2 * time.Hour)}
	assert.Nil(t, DecideNotFound(future, ref))

	noStart := backend.Event{ID: 11}
	assert.Nil(t, DecideNotFound(noStart, ref))

	done := backend.Event{ID: 12, StartTime: ref.Add(-5 * time.Hour), IsComplete: true}
	assert.Nil(t, DecideNotFound(done, ref))
}
