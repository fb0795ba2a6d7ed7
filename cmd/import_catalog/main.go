package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"library-ledger/internal/logger"
	"library-ledger/library"
)

// import_catalog validates a catalog file, loads it into a fresh ledger and
// prints what would be on the shelves.
func main() {
	path := flag.String("catalog", "catalog.yaml", "path to the YAML catalog")
	journalPath := flag.String("journal", library.MemoryJournal, "journal to record the import in")
	flag.Parse()

	logger.Initialize("warn", "text")

	fmt.Printf("Importing catalog from %s...\n", *path)
	catalog, err := library.LoadCatalog(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	journal, err := library.OpenJournal(*journalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	manager := library.NewManager(library.NewLedger(), journal, nil)
	defer manager.Close()

	successCount, errorCount := 0, 0
	for _, rec := range catalog.Items {
		kind, _ := library.ParseKind(strings.ToLower(strings.TrimSpace(rec.Kind)))
		var item *library.Item
		switch kind {
		case library.KindBook:
			item = library.NewBook(rec.ID, rec.Title, rec.Creator)
		case library.KindAlbum:
			item = library.NewAlbum(rec.ID, rec.Title, rec.Creator)
		default:
			item = library.NewMovie(rec.ID, rec.Title, rec.Creator)
		}

		fmt.Printf("Importing: %s %q... ", kind, rec.Title)
		if err := manager.AddItem(item); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", rec.ID)
		successCount++
	}

	for _, rec := range catalog.Patrons {
		if err := manager.AddPatron(library.NewPatron(rec.ID, rec.Name), rec.PIN); err != nil {
			fmt.Printf("Patron %s: ERROR - %v\n", rec.ID, err)
			errorCount++
			continue
		}
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d records\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	st := manager.Status()
	if len(st.Items) > 0 {
		fmt.Println("\nItems:")
		fmt.Printf("%-8s %-6s %-40s %-25s %s\n", "ID", "Kind", "Title", "Creator", "Loan days")
		fmt.Println(strings.Repeat("-", 95))
		for _, it := range st.Items {
			item, _ := manager.Ledger().LookupItem(it.ID)
			fmt.Printf("%-8s %-6s %-40s %-25s %d\n", it.ID, it.Kind, truncateString(it.Title, 40), truncateString(it.Creator, 25), item.CheckoutDuration())
		}
	}
	if len(st.Patrons) > 0 {
		fmt.Println("\nPatrons:")
		for _, p := range st.Patrons {
			pin := ""
			if manager.RequiresPIN(p.ID) {
				pin = " (PIN)"
			}
			fmt.Printf("  %-8s %s%s\n", p.ID, p.Name, pin)
		}
	}
	if errorCount > 0 {
		os.Exit(1)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
