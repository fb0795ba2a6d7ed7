package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"library-ledger/library"
)

// shell is the interactive circulation desk.
type shell struct {
	sc    *bufio.Scanner
	out   io.Writer
	mgr   *library.Manager
	clock *library.Clock
	pinFD int

	readPIN func(prompt string) (string, error)
}

func newShell(in io.Reader, out io.Writer, mgr *library.Manager) *shell {
	s := &shell{sc: bufio.NewScanner(in), out: out, mgr: mgr, pinFD: terminalFD(in)}
	s.readPIN = s.readPINFromInput
	return s
}

// terminalFD returns the descriptor of in when it is a terminal, else -1.
func terminalFD(in io.Reader) int {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return -1
	}
	return int(f.Fd())
}

func (s *shell) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }
func (s *shell) println(args ...any)               { fmt.Fprintln(s.out, args...) }

// readPINFromInput masks the PIN on a terminal and falls back to a plain
// line read when input is piped.
func (s *shell) readPINFromInput(prompt string) (string, error) {
	s.printf("%s", prompt)
	if s.pinFD >= 0 {
		b, err := term.ReadPassword(s.pinFD)
		if err != nil {
			return "", err
		}
		s.println() // Add newline after PIN input
		return strings.TrimSpace(string(b)), nil
	}
	if !s.sc.Scan() {
		return "", io.EOF
	}
	return strings.TrimSpace(s.sc.Text()), nil
}

// prompt asks for one line; ok is false on end of input.
func (s *shell) prompt(label string) (string, bool) {
	s.printf("%s: ", label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

// authenticate asks for a PIN only when the patron has one.
func (s *shell) authenticate(patronID string) bool {
	if !s.mgr.RequiresPIN(patronID) {
		return true
	}
	pin, err := s.readPIN("PIN: ")
	if err != nil {
		s.printf("Error reading PIN: %v\n", err)
		return false
	}
	if err := s.mgr.Authenticate(patronID, pin); err != nil {
		s.printf("Authentication failed: %v\n", err)
		return false
	}
	return true
}

func (s *shell) run() {
	s.println("Welcome to the Library Ledger!")
	s.println("Available commands:")
	s.println("  Catalog: add book, add album, add movie, add patron, list items, list patrons")
	s.println("  Circulation: checkout, return, request, pay fine")
	s.println("  Time: advance, clock start, clock stop")
	s.println("  Reports: status, overdue, history, export, verify")
	s.println("  System: exit")

	for {
		s.printf("\n[day %d]> ", s.mgr.Ledger().CurrentDay())
		if !s.sc.Scan() {
			break
		}
		cmd := strings.TrimSpace(s.sc.Text())

		switch cmd {
		case "":
			continue
		case "add book":
			s.handleAddItem(library.KindBook)
		case "add album":
			s.handleAddItem(library.KindAlbum)
		case "add movie":
			s.handleAddItem(library.KindMovie)
		case "add patron":
			s.handleAddPatron()
		case "list items":
			s.handleListItems()
		case "list patrons":
			s.handleListPatrons()
		case "checkout":
			s.handleCheckout()
		case "return":
			s.handleReturn()
		case "request":
			s.handleRequest()
		case "pay fine":
			s.handlePayFine()
		case "advance":
			s.handleAdvance()
		case "clock start":
			s.handleClock(true)
		case "clock stop":
			s.handleClock(false)
		case "status":
			s.handleStatus()
		case "overdue":
			s.handleOverdue()
		case "history":
			s.handleHistory()
		case "export":
			s.handleExport()
		case "verify":
			s.handleVerify()
		case "exit":
			s.println("Goodbye!")
			return
		default:
			s.println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

func (s *shell) handleAddItem(kind library.Kind) {
	id, ok := s.prompt("ID")
	if !ok {
		return
	}
	title, ok := s.prompt("Title")
	if !ok {
		return
	}
	role := kind.CreatorRole()
	creator, ok := s.prompt(strings.ToUpper(role[:1]) + role[1:])
	if !ok {
		return
	}

	var item *library.Item
	switch kind {
	case library.KindBook:
		item = library.NewBook(id, title, creator)
	case library.KindAlbum:
		item = library.NewAlbum(id, title, creator)
	default:
		item = library.NewMovie(id, title, creator)
	}
	if err := s.mgr.AddItem(item); err != nil {
		s.printf("Error adding %s: %v\n", kind, err)
		return
	}
	s.printf("Added %s %q (loan period %d days)\n", kind, id, item.CheckoutDuration())
}

func (s *shell) handleAddPatron() {
	id, ok := s.prompt("ID")
	if !ok {
		return
	}
	name, ok := s.prompt("Name")
	if !ok {
		return
	}
	pin, err := s.readPIN("PIN (optional): ")
	if err != nil {
		s.printf("Error reading PIN: %v\n", err)
		return
	}
	if err := s.mgr.AddPatron(library.NewPatron(id, name), pin); err != nil {
		s.printf("Error: %v\n", err)
		return
	}
	s.printf("Added patron '%s' with ID %s\n", name, id)
}

func (s *shell) handleListItems() {
	st := s.mgr.Status()
	if len(st.Items) == 0 {
		s.println("No items in the library.")
		return
	}
	s.printf("%-8s %-6s %-30s %-20s %-14s %-10s %-10s %s\n", "ID", "Kind", "Title", "Creator", "Location", "Holder", "Requester", "Due")
	s.println(strings.Repeat("-", 110))
	for _, it := range st.Items {
		due := "-"
		if it.Holder != "" {
			due = strconv.Itoa(it.DueDay)
		}
		s.printf("%-8s %-6s %-30s %-20s %-14s %-10s %-10s %s\n",
			truncateString(it.ID, 8), it.Kind, truncateString(it.Title, 30), truncateString(it.Creator, 20),
			it.Location, orNone(it.Holder), orNone(it.Requester), due)
	}
}

func (s *shell) handleListPatrons() {
	st := s.mgr.Status()
	if len(st.Patrons) == 0 {
		s.println("No patrons registered.")
		return
	}
	s.printf("%-8s %-25s %-8s %s\n", "ID", "Name", "Fine", "Items")
	s.println(strings.Repeat("-", 60))
	for _, p := range st.Patrons {
		s.printf("%-8s %-25s %-8s %s\n", truncateString(p.ID, 8), truncateString(p.Name, 25),
			p.Fine.StringFixed(2), orNone(strings.Join(p.Items, ", ")))
	}
}

func (s *shell) handleCheckout() {
	patronID, ok := s.prompt("Patron ID")
	if !ok {
		return
	}
	itemID, ok := s.prompt("Item ID")
	if !ok {
		return
	}
	if !s.authenticate(patronID) {
		return
	}
	out := s.mgr.CheckOut(patronID, itemID)
	if !out.OK() {
		s.printf("Error checking out: %v\n", out)
		return
	}
	if it, ok := s.mgr.Status().Item(itemID); ok {
		s.printf("'%s' checked out to %s, due on day %d\n", it.Title, patronID, it.DueDay)
	}
}

func (s *shell) handleReturn() {
	itemID, ok := s.prompt("Item ID")
	if !ok {
		return
	}
	out := s.mgr.Return(itemID)
	if !out.OK() {
		s.printf("Error returning item: %v\n", out)
		return
	}
	it, _ := s.mgr.Status().Item(itemID)
	if it.Requester != "" {
		s.printf("'%s' returned and placed on the hold shelf for %s\n", it.Title, it.Requester)
	} else {
		s.printf("'%s' returned to the shelf\n", it.Title)
	}
}

func (s *shell) handleRequest() {
	patronID, ok := s.prompt("Patron ID")
	if !ok {
		return
	}
	itemID, ok := s.prompt("Item ID")
	if !ok {
		return
	}
	if !s.authenticate(patronID) {
		return
	}
	out := s.mgr.Request(patronID, itemID)
	if !out.OK() {
		s.printf("Error placing request: %v\n", out)
		return
	}
	it, _ := s.mgr.Status().Item(itemID)
	s.printf("Request placed on '%s' (now %s)\n", it.Title, it.Location)
}

func (s *shell) handlePayFine() {
	patronID, ok := s.prompt("Patron ID")
	if !ok {
		return
	}
	raw, ok := s.prompt("Amount")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		s.printf("Invalid amount: %s\n", raw)
		return
	}
	if !s.authenticate(patronID) {
		return
	}
	out := s.mgr.PayFine(patronID, amount)
	if !out.OK() {
		s.printf("Error paying fine: %v\n", out)
		return
	}
	p, _ := s.mgr.Status().Patron(patronID)
	s.printf("Payment accepted. Balance for %s: %s\n", p.Name, p.Fine.StringFixed(2))
}

func (s *shell) handleAdvance() {
	raw, ok := s.prompt("Days (default 1)")
	if !ok {
		return
	}
	days := 1
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.printf("Invalid number of days: %s\n", raw)
			return
		}
		days = n
	}
	day := s.mgr.AdvanceDay(days)
	s.printf("Today is day %d\n", day)
}

func (s *shell) handleClock(start bool) {
	if s.clock == nil {
		s.println("No clock schedule configured.")
		return
	}
	if start {
		s.clock.Start()
		s.println("Clock started.")
	} else {
		s.clock.Stop()
		s.println("Clock stopped.")
	}
}

func (s *shell) handleStatus() {
	st := s.mgr.Status()
	checkedOut, onHold := 0, 0
	for _, it := range st.Items {
		switch it.Location {
		case library.CheckedOut.String():
			checkedOut++
		case library.OnHoldShelf.String():
			onHold++
		}
	}
	total := decimal.Zero
	for _, p := range st.Patrons {
		total = total.Add(p.Fine)
	}
	s.printf("Day %d | Items: %d (checked out %d, on hold shelf %d) | Patrons: %d | Outstanding fines: %s\n",
		st.Day, len(st.Items), checkedOut, onHold, len(st.Patrons), total.StringFixed(2))
}

func (s *shell) handleOverdue() {
	st := s.mgr.Status()
	overdue := st.Overdue()
	if len(overdue) == 0 {
		s.println("No overdue items.")
		return
	}
	s.printf("%-8s %-30s %-10s %s\n", "ID", "Title", "Holder", "Days late")
	s.println(strings.Repeat("-", 60))
	for _, it := range overdue {
		s.printf("%-8s %-30s %-10s %d\n", truncateString(it.ID, 8), truncateString(it.Title, 30), it.Holder, st.Day-it.DueDay)
	}
}

func (s *shell) handleHistory() {
	patronID, ok := s.prompt("Patron ID (Enter for all)")
	if !ok {
		return
	}
	var (
		entries []*library.Entry
		err     error
	)
	if patronID == "" {
		entries, err = s.mgr.History(20)
	} else {
		entries, err = s.mgr.PatronHistory(patronID)
	}
	if err != nil {
		s.printf("Error reading history: %v\n", err)
		return
	}
	printEntries(s.out, entries)
}

func (s *shell) handleExport() {
	data, err := s.mgr.Status().JSON()
	if err != nil {
		s.printf("Error exporting state: %v\n", err)
		return
	}
	s.println(string(data))
}

func (s *shell) handleVerify() {
	if err := s.mgr.Ledger().Check(); err != nil {
		s.printf("Ledger inconsistent: %v\n", err)
		return
	}
	s.println("Ledger consistent.")
}

func printEntries(w io.Writer, entries []*library.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No journal entries.")
		return
	}
	fmt.Fprintf(w, "%-5s %-5s %-12s %-8s %-8s %s\n", "#", "Day", "Operation", "Patron", "Item", "Outcome")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Fprintf(w, "%-5d %-5d %-12s %-8s %-8s %s\n", e.ID, e.Day, e.Op, orNone(e.PatronID), orNone(e.ItemID), e.Outcome)
	}
}
