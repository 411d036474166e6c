package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkosuda/linkmap/internal/config"
	"github.com/mkosuda/linkmap/internal/crawler"
	"github.com/mkosuda/linkmap/internal/database"
	"github.com/mkosuda/linkmap/internal/log"
	"github.com/mkosuda/linkmap/internal/model"
	"github.com/mkosuda/linkmap/internal/report"
)

// MarkdownReportFilename is the filename for the optional Markdown
// report when file output is requested.
const MarkdownReportFilename = "crawl_report.md"

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and map its internal links",
		Long: `Crawl starts from the given seed URL and visits every same-domain
page it can reach through anchor links. Paths listed as Disallow rules
in the site's robots.txt are excluded from the crawl.

The result is two JSON artifacts:
- all_links: every visited URL, sorted
- links_by_page: a map from each fetched page to the links found on it

Examples:
  # Crawl a site and print the artifacts to stdout
  linkmap crawl https://example.com

  # Write all_links.json and links_by_page.json to a directory
  linkmap crawl --file --output ./out https://example.com

  # Also generate a Markdown report and save the crawl to history
  linkmap crawl --file --markdown --db https://example.com

  # Use a custom configuration file
  linkmap crawl -c myconfig.yaml https://example.com

Configuration file (.linkmap) example:
  defaults:
    workers: 8
  domains:
    example.com:
      userAgent: "mybot/1.0"
      timeoutSeconds: 10`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Fetch timeout for each page request")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkmap in current or home directory)")

	// Output flags
	cmd.Flags().BoolP("file", "f", false,
		"Write JSON artifacts to files instead of stdout")
	cmd.Flags().StringP("output", "o", "",
		"Output directory for file artifacts (default: current directory)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Additionally write a Markdown crawl report")

	// History flags
	cmd.Flags().Bool("db", false,
		"Save the finished crawl to the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ToFile, err = cmd.Flags().GetBool("file")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("db")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-domain configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.DomainConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Overlay per-domain overrides for the seed's host
	if u, err := url.Parse(cfg.SeedURL); err == nil && u.Hostname() != "" {
		cfg.ApplyDomainConfig(u.Hostname())
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The handler is wrapped so credentials embedded in logged URLs are
// masked before they reach the output.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewSanitizingHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// runCrawl executes the crawl and outputs the results.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seedURL", cfg.SeedURL,
		"workers", cfg.Workers,
		"timeout", cfg.Timeout,
		"saveToDB", cfg.SaveToDB,
	)

	c := crawler.New(
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithExcludedPaths(cfg.ExtraExcludedPaths),
		crawler.WithLogger(logger),
	)

	root, err := crawler.RootDomain(cfg.SeedURL)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", cfg.SeedURL, err)
	}

	fmt.Printf("Crawling %s...\n", root)
	startTime := time.Now()

	results, err := c.Crawl(ctx, cfg.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	crawlReport := &model.CrawlReport{
		RootDomain:  root,
		StartedAt:   startTime,
		Elapsed:     elapsed,
		AllLinks:    results.VisitedLinks(),
		LinksByPage: results.LinksByPage(),
		Stats:       results.Stats(),
	}

	// Output artifacts
	if err := outputReport(cfg, crawlReport); err != nil {
		return err
	}

	// Save to database if enabled
	if err := saveCrawlReport(ctx, cfg, crawlReport, logger); err != nil {
		logger.Error("failed to save crawl report", "rootDomain", root, "error", err)
	}

	return nil
}

// outputReport outputs the crawl artifacts in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	if cfg.ToFile {
		if err := report.WriteFiles(crawlReport, cfg.OutputDir); err != nil {
			return err
		}
		dir := cfg.OutputDir
		if dir == "" {
			dir = "."
		}
		fmt.Printf("Wrote %s and %s to %s\n",
			report.AllLinksFilename, report.LinksByPageFilename, dir)

		if cfg.MarkdownReport {
			return writeMarkdownFile(cfg, crawlReport)
		}
		return nil
	}

	if _, err := stdoutReportWriter(cfg, os.Stdout).Write(crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// stdoutReportWriter composes the writers for stdout output: the JSON
// artifacts always, followed by the Markdown report when requested.
func stdoutReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	writers := []report.Writer{report.NewJSONWriter(out, report.WithPrettyPrint())}
	if cfg.MarkdownReport {
		writers = append(writers, report.NewMarkdownWriter(out))
	}
	return report.NewMultiWriter(writers...)
}

// writeMarkdownFile writes the Markdown report next to the JSON artifacts.
func writeMarkdownFile(cfg *config.Config, crawlReport *model.CrawlReport) error {
	path := filepath.Join(cfg.OutputDir, MarkdownReportFilename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path is derived from user-requested output dir
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewMarkdownWriter(f).Write(crawlReport); err != nil {
		return fmt.Errorf("failed to write Markdown report: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// saveCrawlReport saves the crawl report to the history database if enabled.
func saveCrawlReport(ctx context.Context, cfg *config.Config, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveCrawl(ctx, crawlReport)
	if err != nil {
		return err
	}

	logger.Info("crawl report saved to database", "id", id, "dir", cfg.DBDir)
	return nil
}
