package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-ledger/internal/config"
	"library-ledger/internal/logger"
	"library-ledger/library"
)

var (
	configPath string
	envPath    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "library",
		Short:        "Lending library ledger: checkouts, holds and late fines",
		SilenceUsage: true,
		RunE:         runShell,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&envPath, "env", ".env", "path to .env file")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive circulation desk",
			RunE:  runShell,
		},
		&cobra.Command{
			Use:   "demo",
			Short: "Run the sample circulation scenario",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := loadConfig(); err != nil {
					return err
				}
				return runDemo(cmd.OutOrStdout())
			},
		},
		newHistoryCmd(),
	)
	return root
}

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		patron string
	)
	cmd := &cobra.Command{
		Use:   "history [journal.db]",
		Short: "Print entries from a circulation journal file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := cfg.Journal.Path
			if len(args) == 1 {
				path = args[0]
			}
			if path == library.MemoryJournal {
				return fmt.Errorf("no journal file configured")
			}
			journal, err := library.OpenJournal(path)
			if err != nil {
				return err
			}
			defer journal.Close()

			var entries []*library.Entry
			if patron != "" {
				entries, err = journal.HistoryForPatron(patron)
			} else {
				entries, err = journal.History(limit)
			}
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "number of entries to show (0 = all)")
	cmd.Flags().StringVar(&patron, "patron", "", "only show entries for this patron")
	return cmd
}

// loadConfig reads the .env file and config, then initializes logging.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog := &library.Catalog{}
	if cfg.Catalog.Path != "" {
		if catalog, err = library.LoadCatalog(cfg.Catalog.Path); err != nil {
			return err
		}
	}

	manager, err := library.NewManagerFromCatalog(catalog, cfg.Journal.Path, library.WithDailyFine(cfg.DailyFine()))
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer manager.Close()

	sh := newShell(cmd.InOrStdin(), cmd.OutOrStdout(), manager)
	if cfg.Clock.Schedule != "" {
		clock, err := library.NewClock(manager, cfg.Clock.Schedule)
		if err != nil {
			return err
		}
		sh.clock = clock
		defer clock.Stop()
	}
	sh.run()
	return nil
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
