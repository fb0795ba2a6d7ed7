package library

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIsACopy(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, Success, l.CheckOut("abc", "567"))

	st := l.Snapshot()
	require.Len(t, st.Items, 3)
	require.Len(t, st.Patrons, 2)
	assert.Equal(t, "345", st.Items[0].ID)
	assert.Equal(t, "abc", st.Patrons[0].ID)

	movie, ok := st.Item("567")
	require.True(t, ok)
	assert.Equal(t, "CHECKED_OUT", movie.Location)
	assert.Equal(t, "abc", movie.Holder)
	assert.Equal(t, 7, movie.DueDay)

	require.Equal(t, Success, l.Return("567"))
	movie, _ = st.Item("567")
	assert.Equal(t, "CHECKED_OUT", movie.Location, "snapshot must not follow the ledger")

	_, ok = st.Patron("zzz")
	assert.False(t, ok)
}

func TestSnapshotOverdue(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, Success, l.CheckOut("abc", "567"))
	require.Equal(t, Success, l.CheckOut("bcd", "345"))

	advance(l, 7)
	assert.Empty(t, l.Snapshot().Overdue())

	advance(l, 1)
	overdue := l.Snapshot().Overdue()
	require.Len(t, overdue, 1)
	assert.Equal(t, "567", overdue[0].ID)
}

func TestStateJSON(t *testing.T) {
	l := newTestLedger(t)
	require.Equal(t, Success, l.CheckOut("bcd", "567"))
	advance(l, 9)

	data, err := l.Snapshot().JSON()
	require.NoError(t, err)

	var decoded struct {
		Day     int `json:"day"`
		Patrons []struct {
			ID    string   `json:"id"`
			Fine  string   `json:"fine"`
			Items []string `json:"items"`
		} `json:"patrons"`
	}
	require.NoError(t, jsoniter.Unmarshal(data, &decoded))
	assert.Equal(t, 9, decoded.Day)
	require.Len(t, decoded.Patrons, 2)
	assert.Equal(t, "bcd", decoded.Patrons[1].ID)
	assert.Equal(t, "0.2", decoded.Patrons[1].Fine)
	assert.Equal(t, []string{"567"}, decoded.Patrons[1].Items)
}
