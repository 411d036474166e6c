package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// RootDomain derives the crawl's root domain from the seed URL.
// The root domain is the scheme and host of the seed with no trailing
// slash (e.g. "https://example.com"). It is computed once per crawl and
// every same-domain decision is made against it.
//
// An error is returned when the seed cannot be parsed or has no host
// component; this is the only unrecoverable input error in a crawl.
func RootDomain(seedURL string) (string, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return "", fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid seed URL %q: %w", seedURL, ErrMissingHost)
	}
	return Canonicalize(u.Scheme + "://" + u.Host), nil
}

// Canonicalize returns the canonical form of an absolute URL by stripping
// exactly one trailing slash. It is idempotent: applying it to an already
// canonical URL is a no-op. All URLs stored in the visited set and the
// page-link map are canonical.
func Canonicalize(absoluteURL string) string {
	return strings.TrimSuffix(absoluteURL, "/")
}

// RootPathSegment returns "/" followed by the first non-empty
// slash-delimited segment of path, or false when the path has no segments.
// The root segment is the unit of robots exclusion matching: both the
// Disallow rules and the candidate links are reduced to it before
// comparison.
func RootPathSegment(path string) (string, bool) {
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			return "/" + part, true
		}
	}
	return "", false
}
