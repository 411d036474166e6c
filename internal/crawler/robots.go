package crawler

import (
	"bufio"
	"context"
	"net/http"
	"strings"
)

// robotsPath is where domains publish their crawl-exclusion rules.
const robotsPath = "/robots.txt"

// disallowPrefix is the literal line prefix that contributes an exclusion.
// All other robots.txt directives (Allow, User-agent scoping, Crawl-delay)
// are intentionally ignored: the policy here is binary root-segment
// exclusion only.
const disallowPrefix = "Disallow: "

// ExcludedPaths is the set of root path segments that a crawl must never
// follow, keyed by entries of the form "/segment". It is populated once
// before traversal begins and is read-only afterwards, which makes
// concurrent reads during the crawl safe without locking.
type ExcludedPaths map[string]struct{}

// Contains reports whether the given root path segment is excluded.
func (e ExcludedPaths) Contains(segment string) bool {
	_, ok := e[segment]
	return ok
}

// LoadExcludedPaths fetches and interprets the domain's crawl-exclusion
// rules. It issues a single GET to rootDomain+"/robots.txt" with the given
// user-agent and reduces every "Disallow: " line to its root path segment.
//
// Absence of a usable policy is "nothing excluded", not an error: network
// failures, non-success responses, and unparseable bodies all yield an
// empty set so the crawl proceeds unrestricted.
func LoadExcludedPaths(ctx context.Context, client *http.Client, rootDomain, userAgent string) ExcludedPaths {
	excluded := make(ExcludedPaths)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rootDomain+robotsPath, nil)
	if err != nil {
		return excluded
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return excluded
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return excluded
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, disallowPrefix) {
			continue
		}
		if segment, ok := RootPathSegment(strings.TrimPrefix(line, disallowPrefix)); ok {
			excluded[segment] = struct{}{}
		}
	}
	// A scanner error means a truncated body; the entries collected so
	// far are still usable.

	return excluded
}
