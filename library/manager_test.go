package library

import (
	"io"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-ledger/internal/logger"
)

func TestMain(m *testing.M) {
	logger.InitializeTo(io.Discard, "debug", "text")
	os.Exit(m.Run())
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	c, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	mgr, err := NewManagerFromCatalog(c, MemoryJournal)
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerJournalsCirculation(t *testing.T) {
	mgr := newManager(t)

	assert.Equal(t, Success, mgr.CheckOut("bcd", "456"))
	assert.Equal(t, 7, mgr.AdvanceDay(7))
	assert.Equal(t, Success, mgr.Request("abc", "456"))
	assert.Equal(t, AlreadyOnHold, mgr.Request("bcd", "456"))
	assert.Equal(t, Success, mgr.Return("456"))

	entries, err := mgr.History(0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Op
	}
	assert.Equal(t, []string{"checkout", "advance_day", "request", "request", "return"}, ops)

	assert.Equal(t, "item already on hold", entries[3].Outcome)
	ret := entries[4]
	assert.Equal(t, "bcd", ret.PatronID, "return names the previous holder")
	assert.Equal(t, 7, ret.Day)
	assert.Equal(t, "abc", ret.Details["hold_for"])

	st := mgr.Status()
	it, ok := st.Item("456")
	require.True(t, ok)
	assert.Equal(t, "ON_HOLD_SHELF", it.Location)
}

func TestManagerPayFine(t *testing.T) {
	mgr := newManager(t)
	require.Equal(t, Success, mgr.CheckOut("bcd", "567"))
	mgr.AdvanceDay(12)

	assert.Equal(t, PatronNotFound, mgr.PayFine("zzz", decimal.NewFromInt(1)))
	require.Equal(t, Success, mgr.PayFine("bcd", decimal.RequireFromString("0.20")))

	p, ok := mgr.Status().Patron("bcd")
	require.True(t, ok)
	assert.Equal(t, "0.30", p.Fine.StringFixed(2))

	history, err := mgr.PatronHistory("bcd")
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, "pay_fine", last.Op)
	assert.Equal(t, "0.2", last.Details["amount"])
	assert.Equal(t, "0.3", last.Details["balance"])
}

func TestManagerAuthenticate(t *testing.T) {
	mgr := newManager(t)

	assert.True(t, mgr.RequiresPIN("abc"))
	assert.False(t, mgr.RequiresPIN("bcd"))

	assert.NoError(t, mgr.Authenticate("abc", "1234"))
	assert.ErrorIs(t, mgr.Authenticate("abc", "9999"), ErrInvalidPIN)
	assert.NoError(t, mgr.Authenticate("bcd", ""))
	assert.ErrorIs(t, mgr.Authenticate("zzz", ""), ErrPatronNotFound)

	entries, err := mgr.PatronHistory("abc")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "authenticate", entries[0].Op)
	assert.Equal(t, ErrInvalidPIN.Error(), entries[0].Outcome)
}

func TestManagerAddEntities(t *testing.T) {
	mgr := NewManager(NewLedger(), tempJournal(t), nil)

	require.NoError(t, mgr.AddItem(NewMovie("567", "Laputa", "Miyazaki")))
	require.NoError(t, mgr.AddPatron(NewPatron("abc", "Felicity"), "4321"))
	require.NoError(t, mgr.AddPatron(NewPatron("bcd", "Waldo"), ""))

	assert.ErrorIs(t, mgr.AddItem(NewBook("567", "Dup", "Dup")), ErrDuplicateItem)
	assert.ErrorIs(t, mgr.AddPatron(NewPatron("abc", "Dup"), "1111"), ErrDuplicatePatron)
	assert.NoError(t, mgr.Authenticate("abc", "4321"), "failed add must not replace the PIN")
	assert.False(t, mgr.RequiresPIN("bcd"))

	entries, err := mgr.History(0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestManagerWithoutJournal(t *testing.T) {
	mgr := NewManager(newTestLedger(t), nil, nil)
	assert.Equal(t, Success, mgr.CheckOut("abc", "345"))
	assert.Equal(t, 1, mgr.AdvanceDay(1))

	_, err := mgr.History(10)
	assert.Error(t, err)
	assert.NoError(t, mgr.Close())
}
