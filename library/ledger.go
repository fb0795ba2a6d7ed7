package library

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultDailyFine is charged per overdue item per day.
var DefaultDailyFine = decimal.New(10, -2)

var (
	ErrNilEntity       = errors.New("nil entity")
	ErrEmptyID         = errors.New("empty id")
	ErrDuplicateItem   = errors.New("duplicate item id")
	ErrDuplicatePatron = errors.New("duplicate patron id")
)

// Ledger owns every item and patron, keeps the day counter and performs all
// circulation operations. Items reference patrons by ID only.
type Ledger struct {
	mu sync.Mutex

	items     map[string]*Item
	patrons   map[string]*Patron
	day       int
	dailyFine decimal.Decimal
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithDailyFine overrides the per-day penalty for overdue items.
func WithDailyFine(amount decimal.Decimal) Option {
	return func(l *Ledger) { l.dailyFine = amount }
}

// NewLedger returns an empty ledger on day 0.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		items:     make(map[string]*Item),
		patrons:   make(map[string]*Patron),
		dailyFine: DefaultDailyFine,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ------------------ Registration ------------------

// AddItem takes ownership of item. An ID that is already registered is
// rejected and the ledger is left untouched.
func (l *Ledger) AddItem(item *Item) error {
	if item == nil {
		return ErrNilEntity
	}
	if item.ID == "" {
		return fmt.Errorf("%w: item %q", ErrEmptyID, item.Title)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.items[item.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateItem, item.ID)
	}
	l.items[item.ID] = item
	return nil
}

// AddPatron takes ownership of patron, rejecting duplicate IDs like AddItem.
func (l *Ledger) AddPatron(patron *Patron) error {
	if patron == nil {
		return ErrNilEntity
	}
	// "" marks an item with no holder or requester.
	if patron.ID == "" {
		return fmt.Errorf("%w: patron %q", ErrEmptyID, patron.Name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.patrons[patron.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePatron, patron.ID)
	}
	if patron.held == nil {
		patron.held = make(map[string]struct{})
	}
	l.patrons[patron.ID] = patron
	return nil
}

func (l *Ledger) LookupItem(id string) (*Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[id]
	return item, ok
}

func (l *Ledger) LookupPatron(id string) (*Patron, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	patron, ok := l.patrons[id]
	return patron, ok
}

// HolderOf returns the ID of the patron who has itemID checked out.
func (l *Ledger) HolderOf(itemID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[itemID]
	if !ok || item.holder == "" {
		return "", false
	}
	return item.holder, true
}

// RequesterOf returns the ID of the patron holding a request on itemID.
func (l *Ledger) RequesterOf(itemID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[itemID]
	if !ok || item.requester == "" {
		return "", false
	}
	return item.requester, true
}

// FineOf returns the current balance of patronID.
func (l *Ledger) FineOf(patronID string) (decimal.Decimal, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	patron, ok := l.patrons[patronID]
	if !ok {
		return decimal.Zero, false
	}
	return patron.fine, true
}

func (l *Ledger) CurrentDay() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.day
}

// ------------------ Circulation ------------------

// CheckOut lends itemID to patronID. An item on the hold shelf can only be
// checked out by the patron who requested it, and doing so clears the hold.
func (l *Ledger) CheckOut(patronID, itemID string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	patron, ok := l.patrons[patronID]
	if !ok {
		return PatronNotFound
	}
	item, ok := l.items[itemID]
	if !ok {
		return ItemNotFound
	}
	switch {
	case item.location == CheckedOut:
		return AlreadyCheckedOut
	case item.location == OnHoldShelf && item.requester != patronID:
		return HeldByOtherPatron
	}

	item.holder = patronID
	item.checkoutDay = l.day
	item.location = CheckedOut
	item.requester = ""
	patron.addItem(itemID)
	return Success
}

// Return brings itemID back. It goes to the hold shelf when a request is
// pending and to the open shelf otherwise.
func (l *Ledger) Return(itemID string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[itemID]
	if !ok {
		return ItemNotFound
	}
	if item.location == OnShelf {
		return AlreadyOnShelf
	}

	if holder, ok := l.patrons[item.holder]; ok {
		holder.removeItem(itemID)
	}
	item.holder = ""
	if item.requester != "" {
		item.location = OnHoldShelf
	} else {
		item.location = OnShelf
	}
	return Success
}

// Request places a hold for patronID. A shelved item moves to the hold shelf
// right away; a checked-out item keeps its location until it is returned.
func (l *Ledger) Request(patronID, itemID string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.patrons[patronID]; !ok {
		return PatronNotFound
	}
	item, ok := l.items[itemID]
	if !ok {
		return ItemNotFound
	}
	if item.requester != "" {
		return AlreadyOnHold
	}

	item.requester = patronID
	if item.location == OnShelf {
		item.location = OnHoldShelf
	}
	return Success
}

// PayFine subtracts amount from the patron's balance. The amount is not
// validated, so overpaying leaves a negative balance.
func (l *Ledger) PayFine(patronID string, amount decimal.Decimal) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	patron, ok := l.patrons[patronID]
	if !ok {
		return PatronNotFound
	}
	patron.amendFine(amount.Neg())
	return Success
}

// AdvanceDay moves the day counter forward by one and charges the daily fine
// for every item kept longer than its checkout duration.
func (l *Ledger) AdvanceDay() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.day++
	for _, item := range l.items {
		if item.location != CheckedOut {
			continue
		}
		if l.day-item.checkoutDay <= item.CheckoutDuration() {
			continue
		}
		if holder, ok := l.patrons[item.holder]; ok {
			holder.amendFine(l.dailyFine)
		}
	}
}

// ------------------ Invariants ------------------

// Check verifies the relationship between items and patrons and returns the
// first violation found.
func (l *Ledger) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, item := range l.items {
		if (item.location == CheckedOut) != (item.holder != "") {
			return fmt.Errorf("item %q: location %s with holder %q", id, item.location, item.holder)
		}
		if item.location == OnHoldShelf && item.requester == "" {
			return fmt.Errorf("item %q: on hold shelf without requester", id)
		}
		if item.holder != "" {
			holder, ok := l.patrons[item.holder]
			if !ok {
				return fmt.Errorf("item %q: holder %q is not registered", id, item.holder)
			}
			if !holder.Holds(id) {
				return fmt.Errorf("item %q: missing from holder %q", id, item.holder)
			}
		}
	}
	for pid, patron := range l.patrons {
		for itemID := range patron.held {
			item, ok := l.items[itemID]
			if !ok {
				return fmt.Errorf("patron %q: holds unknown item %q", pid, itemID)
			}
			if item.holder != pid {
				return fmt.Errorf("patron %q: holds item %q checked out to %q", pid, itemID, item.holder)
			}
		}
	}
	return nil
}
