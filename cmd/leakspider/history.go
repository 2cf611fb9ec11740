package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakspider/leakspider/internal/config"
	"github.com/leakspider/leakspider/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored credential discoveries",
		Long: `History lists credential records stored by previous crawl runs.

Records show the identifier, the one-way secret hash, and where the leak
was found. The plaintext secret is never stored and cannot be shown.

Examples:
  # All stored discoveries
  leakspider history

  # Discoveries for one account
  leakspider history --identifier user@example.com

  # Discoveries on one service
  leakspider history --service exampleonion.onion

  # Seeds crawled so far
  leakspider history --seeds`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("identifier", "i", "", "Filter by account identifier")
	cmd.Flags().StringP("service", "s", "", "Filter by onion service")
	cmd.Flags().Bool("seeds", false, "List crawled seeds instead of credentials")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// History never creates a database: an empty history is a missing
	// database, not an error worth a new file.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (database: %s): %w", dbDir, err)
	}
	defer db.Close() //nolint:errcheck // Read only

	listSeeds, err := cmd.Flags().GetBool("seeds")
	if err != nil {
		return err
	}
	if listSeeds {
		return printSeeds(cmd, db)
	}

	identifier, err := cmd.Flags().GetString("identifier")
	if err != nil {
		return err
	}
	service, err := cmd.Flags().GetString("service")
	if err != nil {
		return err
	}
	return printCredentials(cmd, db, identifier, service)
}

// printCredentials writes stored credentials as an aligned table.
func printCredentials(cmd *cobra.Command, db *database.LeakDB, identifier, service string) error {
	credentials, err := db.ListCredentials(cmd.Context(), identifier, service)
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}
	if len(credentials) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored credentials match.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "FOUND\tIDENTIFIER\tSECRET HASH\tSOURCE")
	for _, cred := range credentials {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cred.FoundAt.Format(time.DateTime),
			cred.Identifier,
			cred.SecretHash,
			cred.SourceURL,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d record(s)\n", len(credentials))
	return nil
}

// printSeeds writes each crawled seed with its latest run summary.
func printSeeds(cmd *cobra.Command, db *database.LeakDB) error {
	seeds, err := db.ListCrawledSeeds(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list seeds: %w", err)
	}
	if len(seeds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawls recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tLAST CRAWL\tPAGES\tFAILED\tCREDENTIALS")
	for _, seed := range seeds {
		latest, err := db.GetLatestCrawlReport(cmd.Context(), seed)
		if err != nil {
			return fmt.Errorf("failed to load report for %s: %w", seed, err)
		}
		if latest == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			seed,
			latest.StartedAt.Format(time.DateTime),
			latest.PagesCrawled,
			latest.PagesFailed,
			len(latest.Credentials),
		)
	}
	return w.Flush()
}
