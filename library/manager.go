package library

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"library-ledger/internal/logger"
)

// Manager is the circulation desk: a thin façade over the Ledger that also
// journals and logs every operation, keeping CLI code simple.
type Manager struct {
	ledger  *Ledger
	journal *Journal
	pins    PINBook
}

// NewManager wires a ledger to an optional journal and PIN book; both may be nil.
func NewManager(ledger *Ledger, journal *Journal, pins PINBook) *Manager {
	if pins == nil {
		pins = PINBook{}
	}
	return &Manager{ledger: ledger, journal: journal, pins: pins}
}

// NewManagerFromCatalog builds a fresh ledger from catalog and opens the
// journal at journalPath.
func NewManagerFromCatalog(catalog *Catalog, journalPath string, opts ...Option) (*Manager, error) {
	ledger := NewLedger(opts...)
	pins, err := catalog.Populate(ledger)
	if err != nil {
		return nil, err
	}
	journal, err := OpenJournal(journalPath)
	if err != nil {
		return nil, err
	}
	return NewManager(ledger, journal, pins), nil
}

func (m *Manager) Ledger() *Ledger   { return m.ledger }
func (m *Manager) Journal() *Journal { return m.journal }

// Close closes the journal.
func (m *Manager) Close() error {
	if m.journal == nil {
		return nil
	}
	return m.journal.Close()
}

func (m *Manager) log() *slog.Logger { return logger.WithService("desk") }

// ------------------ Registration ------------------

func (m *Manager) AddItem(item *Item) error {
	if err := m.ledger.AddItem(item); err != nil {
		return err
	}
	m.record(Entry{Op: "add_item", ItemID: item.ID, Outcome: Success.String(),
		Details: map[string]any{"kind": item.Kind.String(), "title": item.Title}})
	return nil
}

// AddPatron registers patron and, when pin is not empty, protects it.
func (m *Manager) AddPatron(patron *Patron, pin string) error {
	var hash string
	if strings.TrimSpace(pin) != "" {
		var err error
		if hash, err = HashPIN(pin); err != nil {
			return err
		}
	}
	if err := m.ledger.AddPatron(patron); err != nil {
		return err
	}
	if hash != "" {
		m.pins[patron.ID] = hash
	}
	m.record(Entry{Op: "add_patron", PatronID: patron.ID, Outcome: Success.String()})
	return nil
}

// ------------------ Authentication ------------------

// RequiresPIN reports whether patronID must authenticate.
func (m *Manager) RequiresPIN(patronID string) bool { return m.pins.Protected(patronID) }

// Authenticate verifies the patron's PIN. Patrons without a PIN always pass.
func (m *Manager) Authenticate(patronID, pin string) error {
	if _, ok := m.ledger.LookupPatron(patronID); !ok {
		return ErrPatronNotFound
	}
	if err := m.pins.Verify(patronID, pin); err != nil {
		m.log().Warn("authentication failed", "patron", patronID)
		m.record(Entry{Op: "authenticate", PatronID: patronID, Outcome: err.Error()})
		return err
	}
	return nil
}

// ------------------ Circulation ------------------

func (m *Manager) CheckOut(patronID, itemID string) Outcome {
	out := m.ledger.CheckOut(patronID, itemID)
	m.finish(Entry{Op: "checkout", PatronID: patronID, ItemID: itemID}, out)
	return out
}

// Return returns itemID; the journal entry names the patron who had it.
func (m *Manager) Return(itemID string) Outcome {
	holder, _ := m.ledger.HolderOf(itemID)
	out := m.ledger.Return(itemID)
	e := Entry{Op: "return", PatronID: holder, ItemID: itemID}
	if requester, ok := m.ledger.RequesterOf(itemID); ok && out.OK() {
		e.Details = map[string]any{"hold_for": requester}
	}
	m.finish(e, out)
	return out
}

func (m *Manager) Request(patronID, itemID string) Outcome {
	out := m.ledger.Request(patronID, itemID)
	m.finish(Entry{Op: "request", PatronID: patronID, ItemID: itemID}, out)
	return out
}

func (m *Manager) PayFine(patronID string, amount decimal.Decimal) Outcome {
	out := m.ledger.PayFine(patronID, amount)
	e := Entry{Op: "pay_fine", PatronID: patronID, Details: map[string]any{"amount": amount.String()}}
	if balance, ok := m.ledger.FineOf(patronID); ok {
		e.Details["balance"] = balance.String()
		if balance.IsNegative() {
			m.log().Warn("fine overpaid", "patron", patronID, "balance", balance.String())
		}
	}
	m.finish(e, out)
	return out
}

// AdvanceDay moves the ledger forward n days and returns the new day.
func (m *Manager) AdvanceDay(n int) int {
	for i := 0; i < n; i++ {
		m.ledger.AdvanceDay()
	}
	st := m.ledger.Snapshot()
	overdue := st.Overdue()
	m.record(Entry{
		Day:     st.Day,
		Op:      "advance_day",
		Outcome: Success.String(),
		Details: map[string]any{"days": n, "overdue": len(overdue)},
	})
	m.log().Debug("day advanced", "day", st.Day, "overdue", len(overdue))
	return st.Day
}

// Status returns a copy of the ledger state.
func (m *Manager) Status() State { return m.ledger.Snapshot() }

// History returns the latest journal entries.
func (m *Manager) History(limit int) ([]*Entry, error) {
	if m.journal == nil {
		return nil, fmt.Errorf("journal is disabled")
	}
	return m.journal.History(limit)
}

// PatronHistory returns every journal entry naming patronID.
func (m *Manager) PatronHistory(patronID string) ([]*Entry, error) {
	if m.journal == nil {
		return nil, fmt.Errorf("journal is disabled")
	}
	return m.journal.HistoryForPatron(patronID)
}

// ------------------ Helpers ------------------

func (m *Manager) finish(e Entry, out Outcome) {
	e.Day = m.ledger.CurrentDay()
	e.Outcome = out.String()
	if out.OK() {
		m.log().Info(e.Op, "patron", e.PatronID, "item", e.ItemID, "day", e.Day)
	} else {
		m.log().Info(e.Op+" declined", "patron", e.PatronID, "item", e.ItemID, "outcome", out.String())
	}
	m.record(e)
}

func (m *Manager) record(e Entry) {
	if m.journal == nil {
		return
	}
	if e.Day == 0 {
		e.Day = m.ledger.CurrentDay()
	}
	if _, err := m.journal.Record(e); err != nil {
		m.log().Error("journal write failed", "op", e.Op, "error", err)
	}
}
