package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/mkosuda/linkmap/internal/crawler"
)

// Default configuration values.
// The crawl defaults are owned by the crawler package; the aliases here
// exist so flag registration does not have to import the crawler.
const (
	// DefaultTimeout is the per-request timeout for page fetches.
	DefaultTimeout = crawler.DefaultTimeout

	// DefaultWorkers bounds crawl concurrency.
	DefaultWorkers = crawler.DefaultWorkers

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = crawler.DefaultUserAgent

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = crawler.DefaultMaxBodySize

	// AppName is the application name used for XDG directory paths.
	AppName = "linkmap"
)

// Config holds all configuration options for a crawl run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// SeedURL is the URL the crawl starts from. The crawl is scoped to
	// this URL's scheme and host.
	SeedURL string

	// Timeout is the per-request timeout for page fetches.
	Timeout time.Duration

	// Workers is the number of concurrent fetch workers.
	Workers int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// ToFile writes the JSON artifacts to files instead of stdout.
	ToFile bool

	// OutputDir is the directory for file artifacts. Empty means the
	// current directory.
	OutputDir string

	// MarkdownReport additionally writes a Markdown crawl report.
	MarkdownReport bool

	// SaveToDB persists the finished crawl to the history database.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// ExtraExcludedPaths lists paths excluded from the crawl in addition
	// to the domain's robots.txt Disallow rules. Populated from the
	// config file.
	ExtraExcludedPaths []string

	// ConfigFilePath is the path to the optional YAML configuration file.
	// If empty, the tool searches for .linkmap in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DomainConfigs holds per-domain overrides loaded from the config
	// file.
	DomainConfigs *File

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeout, worker count).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Workers:     DefaultWorkers,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linkmap.
// On Linux: ~/.local/share/linkmap
// On macOS: ~/Library/Application Support/linkmap
// On Windows: %LOCALAPPDATA%\linkmap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found; fixing one error often makes the
// rest irrelevant. This is called once after CLI parsing, before any
// crawling begins.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// ApplyDomainConfig overlays per-domain overrides from the config file
// onto the flag-derived settings. Values absent from the file leave the
// flag-derived settings untouched.
func (c *Config) ApplyDomainConfig(host string) {
	if c.DomainConfigs == nil {
		return
	}

	dc := c.DomainConfigs.GetDomainConfig(host)
	if dc.UserAgent != "" {
		c.UserAgent = dc.UserAgent
	}
	if dc.Workers > 0 {
		c.Workers = dc.Workers
	}
	if dc.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(dc.TimeoutSeconds) * time.Second
	}
	if len(dc.ExcludedPaths) > 0 {
		c.ExtraExcludedPaths = dc.ExcludedPaths
	}
}
