package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkosuda/linkmap/internal/config"
	"github.com/mkosuda/linkmap/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [root-domain]",
		Short: "List crawls saved to the history database",
		Long: `History lists crawls previously saved with "crawl --db", newest first.
An optional root-domain argument limits the listing to that domain.

Examples:
  # List every saved crawl
  linkmap history

  # List saved crawls for one domain
  linkmap history https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	var rootDomain string
	if len(args) > 0 {
		rootDomain = args[0]
	}

	db, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return errors.New("no crawl history found (run \"linkmap crawl --db <url>\" first)")
	}
	defer db.Close()

	history, err := db.GetCrawlHistory(cmd.Context(), rootDomain)
	if err != nil {
		return fmt.Errorf("failed to load crawl history: %w", err)
	}

	if len(history) == 0 {
		if rootDomain != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No saved crawls for %s\n", rootDomain)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved crawls")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tSTARTED\tELAPSED\tVISITED\tFETCHED\tFAILURES\tLINKS")
	for _, meta := range history {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			meta.ID,
			meta.RootDomain,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			meta.Elapsed.Round(time.Millisecond),
			meta.URLsVisited,
			meta.PagesFetched,
			meta.FetchFailures,
			meta.LinksDiscovered,
		)
	}
	return w.Flush()
}
