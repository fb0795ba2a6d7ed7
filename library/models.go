package library

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant of a catalog item.
type Kind int

const (
	KindBook Kind = iota
	KindAlbum
	KindMovie
)

// checkoutDays maps each kind to the number of days it may be kept before
// fines start to accrue.
var checkoutDays = map[Kind]int{
	KindBook:  21,
	KindAlbum: 14,
	KindMovie: 7,
}

var kindNames = map[Kind]string{
	KindBook:  "book",
	KindAlbum: "album",
	KindMovie: "movie",
}

// creatorRoles names the descriptive field each kind carries.
var creatorRoles = map[Kind]string{
	KindBook:  "author",
	KindAlbum: "artist",
	KindMovie: "director",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CheckoutDuration returns the loan period in days, or 0 for an unknown kind.
func (k Kind) CheckoutDuration() int { return checkoutDays[k] }

// CreatorRole returns "author", "artist" or "director".
func (k Kind) CreatorRole() string { return creatorRoles[k] }

// ParseKind converts "book", "album" or "movie" into a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Location is the position of an item in its lifecycle.
type Location int

const (
	OnShelf Location = iota
	CheckedOut
	OnHoldShelf
)

func (l Location) String() string {
	switch l {
	case OnShelf:
		return "ON_SHELF"
	case CheckedOut:
		return "CHECKED_OUT"
	case OnHoldShelf:
		return "ON_HOLD_SHELF"
	default:
		return "UNKNOWN"
	}
}

// Item is a catalog entry. Descriptive fields are exported; circulation state
// is owned by the Ledger and only readable from outside.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Kind    Kind   `json:"kind"`
	Creator string `json:"creator"` // author, artist or director depending on Kind

	location    Location
	holder      string // patron ID, set iff location == CheckedOut
	requester   string // patron ID of the pending hold
	checkoutDay int
}

func newItem(kind Kind, id, title, creator string) *Item {
	return &Item{ID: id, Title: title, Kind: kind, Creator: creator}
}

func NewBook(id, title, author string) *Item { return newItem(KindBook, id, title, author) }
func NewAlbum(id, title, artist string) *Item { return newItem(KindAlbum, id, title, artist) }
func NewMovie(id, title, director string) *Item { return newItem(KindMovie, id, title, director) }
func (i *Item) Location() Location { return i.location }
func (i *Item) Holder() string { return i.holder }
func (i *Item) Requester() string { return i.requester }
func (i *Item) CheckoutDay() int { return i.checkoutDay }
func (i *Item) CheckoutDuration() int { return i.Kind.CheckoutDuration() }

// Author returns the creator of a book and "" for other kinds.
func (i *Item) Author() string { return i.creatorFor(KindBook) }

// Artist returns the creator of an album and "" for other kinds.
func (i *Item) Artist() string { return i.creatorFor(KindAlbum) }

// Director returns the creator of a movie and "" for other kinds.
func (i *Item) Director() string { return i.creatorFor(KindMovie) }

func (i *Item) creatorFor(k Kind) string {
	if i.Kind != k {
		return ""
	}
	return i.Creator
}

// Patron is a registered borrower.
type Patron struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	held map[string]struct{}
	fine decimal.Decimal
}

// NewPatron creates a patron with no items and a zero balance.
func NewPatron(id, name string) *Patron {
	return &Patron{ID: id, Name: name, held: make(map[string]struct{})}
}

// HeldItems returns the IDs of the items the patron has checked out, sorted.
func (p *Patron) HeldItems() []string {
	ids := make([]string, 0, len(p.held))
	for id := range p.held {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Holds reports whether the patron currently has itemID checked out.
func (p *Patron) Holds(itemID string) bool {
	_, ok := p.held[itemID]
	return ok
}

// Fine returns the outstanding balance. It can be negative after an overpayment.
func (p *Patron) Fine() decimal.Decimal { return p.fine }

func (p *Patron) addItem(itemID string) {
	if p.held == nil {
		p.held = make(map[string]struct{})
	}
	p.held[itemID] = struct{}{}
}

func (p *Patron) removeItem(itemID string) { delete(p.held, itemID) }

func (p *Patron) amendFine(amount decimal.Decimal) { p.fine = p.fine.Add(amount) }
