package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkmap"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// DomainConfig holds per-domain overrides for a single crawl target.
// This allows tuning crawl behavior for domains that need it without
// touching the flags used for everything else.
type DomainConfig struct {
	// UserAgent overrides the User-Agent header for this domain.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Workers overrides the number of concurrent fetch workers.
	Workers int `yaml:"workers,omitempty"`

	// TimeoutSeconds overrides the per-request fetch timeout, in seconds.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// ExcludedPaths lists extra paths to exclude from the crawl, on top
	// of the domain's robots.txt Disallow rules.
	ExcludedPaths []string `yaml:"excludedPaths,omitempty"`
}

// File represents the structure of the .linkmap configuration file.
type File struct {
	// Domains maps hostnames to their per-domain overrides.
	// Keys are bare hosts (e.g. "example.com"), no scheme.
	Domains map[string]DomainConfig `yaml:"domains,omitempty"`

	// Defaults contains overrides applied to every domain unless the
	// domain-specific entry sets its own value.
	Defaults DomainConfig `yaml:"defaults,omitempty"`
}

// GetDomainConfig returns the configuration for a specific host.
// It merges the domain-specific entry over the file's defaults.
func (f *File) GetDomainConfig(host string) DomainConfig {
	result := f.Defaults

	if dc, ok := f.Domains[host]; ok {
		if dc.UserAgent != "" {
			result.UserAgent = dc.UserAgent
		}
		if dc.Workers > 0 {
			result.Workers = dc.Workers
		}
		if dc.TimeoutSeconds > 0 {
			result.TimeoutSeconds = dc.TimeoutSeconds
		}
		if len(dc.ExcludedPaths) > 0 {
			result.ExcludedPaths = dc.ExcludedPaths
		}
	}

	return result
}

// LoadConfigFile loads per-domain configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error based on whether the path was explicitly
// specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Domains == nil {
		f.Domains = make(map[string]DomainConfig)
	}

	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linkmap in the current directory
// 3. Look for .linkmap in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
