// Package main provides the entry point for the linkmap CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkmap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkmap",
		Short: "Same-domain web link crawler",
		Long: `linkmap crawls a website starting from a seed URL and maps every
internal link it can reach. The crawl stays on the seed's domain and
honors the site's robots.txt Disallow rules.

The result is two JSON artifacts: the list of all visited URLs and a
map from each page to the links found on it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
