package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_RequestAndDecide(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	now := time.Now().UTC()

	decisions := gate.Request("c1", "draft_contract", now, time.Hour)
	assert.True(t, gate.Pending("c1", "draft_contract"))

	err := gate.Decide("c1", "draft_contract", true, "looks good", now)
	require.NoError(t, err)

	decision := <-decisions
	assert.True(t, decision.Approved)
	assert.Equal(t, "looks good", decision.Feedback)
	assert.False(t, gate.Pending("c1", "draft_contract"))
}

func TestGate_DoubleDecide(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	now := time.Now().UTC()

	gate.Request("c1", "human_approval", now, time.Hour)

	require.NoError(t, gate.Decide("c1", "human_approval", false, "wrong scope", now))

	err := gate.Decide("c1", "human_approval", true, "changed my mind", now)
	require.ErrorIs(t, err, ErrNotAwaitingApproval)
}

func TestGate_DecideWithoutRequest(t *testing.T) {
	t.Parallel()

	gate := NewGate()

	err := gate.Decide("c1", "draft_contract", true, "", time.Now().UTC())
	require.ErrorIs(t, err, ErrNotAwaitingApproval)
}

func TestGate_RequestIdempotent(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	now := time.Now().UTC()

	first := gate.Request("c1", "draft_contract", now, time.Minute)

	// A repeat for the same pending step replaces the window and keeps the
	// original channel; it does not add a second entry.
	later := now.Add(30 * time.Second)
	second := gate.Request("c1", "draft_contract", later, time.Minute)
	assert.Equal(t, first, second)

	assert.Empty(t, gate.Expired(now.Add(70*time.Second)))

	expired := gate.Expired(later.Add(70 * time.Second))
	require.Len(t, expired, 1)
	assert.Equal(t, "c1", expired[0].ClientID)

	require.NoError(t, gate.Decide("c1", "draft_contract", true, "", now))

	decision := <-first
	assert.True(t, decision.Approved)

	err := gate.Decide("c1", "draft_contract", true, "", now)
	require.ErrorIs(t, err, ErrNotAwaitingApproval)
}

func TestGate_Withdraw(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	now := time.Now().UTC()

	gate.Request("c1", "draft_contract", now, time.Hour)

	gate.Withdraw("c1", "draft_contract")
	assert.False(t, gate.Pending("c1", "draft_contract"))

	err := gate.Decide("c1", "draft_contract", true, "", now)
	require.ErrorIs(t, err, ErrNotAwaitingApproval)
}

func TestGate_Expired(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	now := time.Now().UTC()

	gate.Request("c1", "draft_contract", now, time.Minute)
	gate.Request("c2", "human_approval", now, time.Hour)

	assert.Empty(t, gate.Expired(now))

	expired := gate.Expired(now.Add(2 * time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, "c1", expired[0].ClientID)
	assert.Equal(t, "draft_contract", expired[0].StepID)
}
