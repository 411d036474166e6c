package crawler

import "errors"

// Crawl errors.
// Per-page failures are local to one traversal unit: the crawler logs them
// and moves on so one bad page never aborts the crawl. Callers can still
// match them with errors.Is when a fetch is performed directly.
var (
	// ErrMissingHost is returned when a URL parses but has no host
	// component, so no root domain can be derived from it.
	ErrMissingHost = errors.New("URL has no host component")

	// ErrNotHTML is returned when a fetched response does not carry the
	// text/html content type. Such pages are skipped, not followed.
	ErrNotHTML = errors.New("response content type is not text/html")
)
