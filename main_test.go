package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-ledger/internal/logger"
	"library-ledger/library"
)

func TestMain(m *testing.M) {
	logger.InitializeTo(io.Discard, "error", "text")
	os.Exit(m.Run())
}

func newTestShell(t *testing.T, input string) (*shell, *bytes.Buffer) {
	t.Helper()
	journal, err := library.OpenJournal(library.MemoryJournal)
	require.NoError(t, err)
	mgr := library.NewManager(library.NewLedger(), journal, nil)
	t.Cleanup(func() { mgr.Close() })

	var out bytes.Buffer
	sh := newShell(strings.NewReader(input), &out, mgr)
	return sh, &out
}

func script(lines ...string) string { return strings.Join(lines, "\n") + "\n" }

func TestShellCirculation(t *testing.T) {
	sh, out := newTestShell(t, script(
		"add book", "345", "Phantom Tollbooth", "Juster",
		"add album", "456", "...And His Orchestra", "The Fastbacks",
		"add patron", "abc", "Felicity", "",
		"add patron", "bcd", "Waldo", "",
		"checkout", "bcd", "456",
		"advance", "7",
		"request", "abc", "456",
		"checkout", "abc", "456",
		"advance", "10",
		"return", "456",
		"list patrons",
		"pay fine", "bcd", "0.30",
		"verify",
		"exit",
	))
	sh.readPIN = func(string) (string, error) {
		require.True(t, sh.sc.Scan())
		return sh.sc.Text(), nil
	}
	sh.run()

	text := out.String()
	assert.Contains(t, text, `Added book "345" (loan period 21 days)`)
	assert.Contains(t, text, "'...And His Orchestra' checked out to bcd, due on day 14")
	assert.Contains(t, text, "Request placed on '...And His Orchestra' (now CHECKED_OUT)")
	assert.Contains(t, text, "Error checking out: item already checked out")
	assert.Contains(t, text, "Today is day 17")
	assert.Contains(t, text, "returned and placed on the hold shelf for abc")
	assert.Contains(t, text, "Payment accepted. Balance for Waldo: 0.00")
	assert.Contains(t, text, "Ledger consistent.")
	assert.Contains(t, text, "Goodbye!")

	item, _ := sh.mgr.Ledger().LookupItem("456")
	assert.Equal(t, library.OnHoldShelf, item.Location())
}

func TestShellRequiresPIN(t *testing.T) {
	sh, out := newTestShell(t, script(
		"add movie", "567", "Laputa", "Miyazaki",
		"checkout", "abc", "567",
		"checkout", "abc", "567",
		"exit",
	))
	require.NoError(t, sh.mgr.AddPatron(library.NewPatron("abc", "Felicity"), "2468"))

	pins := []string{"1111", "2468"}
	sh.readPIN = func(string) (string, error) {
		pin := pins[0]
		pins = pins[1:]
		return pin, nil
	}
	sh.run()

	text := out.String()
	assert.Contains(t, text, "Authentication failed: invalid PIN")
	assert.Contains(t, text, "'Laputa' checked out to abc, due on day 7")
}

func TestShellReportsAndErrors(t *testing.T) {
	sh, out := newTestShell(t, script(
		"list items",
		"return", "999",
		"request", "zzz", "999",
		"pay fine", "abc", "lots",
		"advance", "-3",
		"clock start",
		"overdue",
		"status",
		"history", "",
		"export",
		"dance",
	))
	sh.run()

	text := out.String()
	assert.Contains(t, text, "No items in the library.")
	assert.Contains(t, text, "Error returning item: item not found")
	assert.Contains(t, text, "Error placing request: patron not found")
	assert.Contains(t, text, "Invalid amount: lots")
	assert.Contains(t, text, "Invalid number of days: -3")
	assert.Contains(t, text, "No clock schedule configured.")
	assert.Contains(t, text, "No overdue items.")
	assert.Contains(t, text, "Day 0 | Items: 0")
	assert.Contains(t, text, "return")
	assert.Contains(t, text, `"day": 0`)
	assert.Contains(t, text, "Unknown command.")
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runDemo(&out))

	text := out.String()
	assert.Contains(t, text, "Juster\nThe Fastbacks\nMiyazaki\n")
	assert.Contains(t, text, "456 is CHECKED_OUT")
	assert.Contains(t, text, "bcd owes 5.00")
	assert.Contains(t, text, "456 is ON_HOLD_SHELF (requested by abc)")
	assert.Contains(t, text, "abc checks out 567")
	assert.Contains(t, text, "item not found")
	assert.Contains(t, text, "abc owes 0.00")
}

func TestHistoryCommand(t *testing.T) {
	path := t.TempDir() + "/journal.db"
	journal, err := library.OpenJournal(path)
	require.NoError(t, err)
	mgr := library.NewManager(library.NewLedger(), journal, nil)
	require.NoError(t, mgr.AddPatron(library.NewPatron("abc", "Felicity"), ""))
	mgr.CheckOut("abc", "345")
	require.NoError(t, mgr.Close())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"history", path, "--patron", "abc", "--env", ""})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "add_patron")
	assert.Contains(t, out.String(), "item not found")
}

func TestTerminalFD(t *testing.T) {
	assert.Equal(t, -1, terminalFD(strings.NewReader("1234\n")))

	f, err := os.CreateTemp(t.TempDir(), "pin")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, -1, terminalFD(f))
}

func TestShellReadsPINFromInjectedInput(t *testing.T) {
	sh, _ := newTestShell(t, "2468\n")
	pin, err := sh.readPIN("PIN: ")
	require.NoError(t, err)
	assert.Equal(t, "2468", pin)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "Phantom...", truncateString("Phantom Tollbooth", 10))
	assert.Equal(t, "Ph", truncateString("Phantom", 2))
}
