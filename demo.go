package main

import (
	"fmt"
	"io"

	"library-ledger/library"
)

// runDemo plays the sample scenario: an album is borrowed, requested by
// another patron while still out, paid off and returned to the hold shelf.
// The movie is printed but never shelved, so checking it out fails.
func runDemo(w io.Writer) error {
	b1 := library.NewBook("345", "Phantom Tollbooth", "Juster")
	a1 := library.NewAlbum("456", "...And His Orchestra", "The Fastbacks")
	m1 := library.NewMovie("567", "Laputa", "Miyazaki")
	fmt.Fprintln(w, b1.Author())
	fmt.Fprintln(w, a1.Artist())
	fmt.Fprintln(w, m1.Director())

	p1 := library.NewPatron("abc", "Felicity")
	p2 := library.NewPatron("bcd", "Waldo")

	mgr := library.NewManager(library.NewLedger(), nil, nil)
	for _, item := range []*library.Item{b1, a1} {
		if err := mgr.AddItem(item); err != nil {
			return err
		}
	}
	for _, p := range []*library.Patron{p1, p2} {
		if err := mgr.AddPatron(p, ""); err != nil {
			return err
		}
	}

	step := func(label string, out library.Outcome) {
		fmt.Fprintf(w, "day %-3d %-28s %s\n", mgr.Ledger().CurrentDay(), label, out)
	}

	step("bcd checks out 456", mgr.CheckOut("bcd", "456"))
	mgr.AdvanceDay(7)
	step("abc checks out 567", mgr.CheckOut("abc", "567"))
	fmt.Fprintf(w, "456 is %s\n", a1.Location())
	step("abc requests 456", mgr.Request("abc", "456"))
	mgr.AdvanceDay(57)

	fine := p2.Fine()
	fmt.Fprintf(w, "bcd owes %s\n", fine.StringFixed(2))
	step("bcd pays fine", mgr.PayFine("bcd", fine))
	step("456 returned", mgr.Return("456"))
	fmt.Fprintf(w, "456 is %s (requested by %s)\n", a1.Location(), a1.Requester())
	fmt.Fprintf(w, "abc owes %s\n", p1.Fine().StringFixed(2))

	return mgr.Ledger().Check()
}
