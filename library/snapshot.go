package library

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// ItemView is a read-only copy of an item's state.
type ItemView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Kind        string `json:"kind"`
	Creator     string `json:"creator"`
	Location    string `json:"location"`
	Holder      string `json:"holder,omitempty"`
	Requester   string `json:"requester,omitempty"`
	CheckoutDay int    `json:"checkout_day"`
	DueDay      int    `json:"due_day,omitempty"`
}

// PatronView is a read-only copy of a patron's state.
type PatronView struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []string        `json:"items"`
	Fine  decimal.Decimal `json:"fine"`
}

// State is a point-in-time copy of the whole ledger, sorted by ID.
type State struct {
	Day     int          `json:"day"`
	Items   []ItemView   `json:"items"`
	Patrons []PatronView `json:"patrons"`
}

// Snapshot copies the ledger so callers can read it while the day clock runs.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := State{
		Day:     l.day,
		Items:   make([]ItemView, 0, len(l.items)),
		Patrons: make([]PatronView, 0, len(l.patrons)),
	}
	for _, it := range l.items {
		v := ItemView{
			ID:        it.ID,
			Title:     it.Title,
			Kind:      it.Kind.String(),
			Creator:   it.Creator,
			Location:  it.location.String(),
			Holder:    it.holder,
			Requester: it.requester,
		}
		if it.location == CheckedOut {
			v.CheckoutDay = it.checkoutDay
			v.DueDay = it.checkoutDay + it.CheckoutDuration()
		}
		st.Items = append(st.Items, v)
	}
	for _, p := range l.patrons {
		st.Patrons = append(st.Patrons, PatronView{
			ID:    p.ID,
			Name:  p.Name,
			Items: p.HeldItems(),
			Fine:  p.fine,
		})
	}
	sort.Slice(st.Items, func(i, j int) bool { return st.Items[i].ID < st.Items[j].ID })
	sort.Slice(st.Patrons, func(i, j int) bool { return st.Patrons[i].ID < st.Patrons[j].ID })
	return st
}

// Patron returns the view for id.
func (s State) Patron(id string) (PatronView, bool) {
	for _, p := range s.Patrons {
		if p.ID == id {
			return p, true
		}
	}
	return PatronView{}, false
}

// Item returns the view for id.
func (s State) Item(id string) (ItemView, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemView{}, false
}

// Overdue lists checked-out items whose due day has passed.
func (s State) Overdue() []ItemView {
	var out []ItemView
	for _, it := range s.Items {
		if it.Holder != "" && s.Day > it.DueDay {
			out = append(out, it)
		}
	}
	return out
}

// JSON renders the state with indentation.
func (s State) JSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(s, "", "  ")
}
