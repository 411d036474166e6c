// Package config provides configuration structures and utilities for
// linkmap. It defines the crawl defaults, the flag-derived Config struct,
// and the optional per-domain YAML configuration file.
package config
