package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockRejectsBadSchedule(t *testing.T) {
	_, err := NewClock(NewManager(NewLedger(), nil, nil), "every tuesday")
	assert.Error(t, err)
}

func TestClockTick(t *testing.T) {
	mgr := NewManager(newTestLedger(t), nil, nil)
	clock, err := NewClock(mgr, "@every 1h")
	require.NoError(t, err)

	assert.Equal(t, 1, clock.Tick())
	assert.Equal(t, 2, clock.Tick())
	assert.Equal(t, 2, mgr.Ledger().CurrentDay())
}

func TestClockAdvancesOnSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the scheduler")
	}
	mgr := NewManager(newTestLedger(t), nil, nil)
	require.Equal(t, Success, mgr.CheckOut("abc", "567"))

	clock, err := NewClock(mgr, "@every 1s")
	require.NoError(t, err)

	clock.Start()
	clock.Start()
	assert.True(t, clock.Running())

	require.Eventually(t, func() bool {
		return mgr.Ledger().CurrentDay() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	// Status reads a copy while the clock keeps ticking.
	_ = mgr.Status()

	clock.Stop()
	clock.Stop()
	assert.False(t, clock.Running())
	require.NoError(t, mgr.Ledger().Check())
}
