package model

import "time"

// CrawlReport is the complete result of one finished crawl: the root
// domain, every visited page, the links discovered on each page, and the
// run's timing and counters. It is assembled once after the crawl
// completes and is the single input to all report writers and the
// history database.
type CrawlReport struct {
	// RootDomain is the scheme+host the crawl was scoped to,
	// e.g. "https://example.com".
	RootDomain string `json:"root_domain"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// AllLinks is every visited canonical URL, sorted.
	AllLinks []string `json:"all_links"`

	// LinksByPage maps each successfully fetched page to the sorted list
	// of links found on it. Every key also appears in AllLinks.
	LinksByPage map[string][]string `json:"links_by_page"`

	// Stats holds the crawl counters.
	Stats CrawlStats `json:"stats"`
}

// CrawlStats contains crawl counters for the completion summary and
// reports.
type CrawlStats struct {
	// PagesFetched is the number of pages successfully fetched and parsed.
	PagesFetched int `json:"pages_fetched"`

	// FetchFailures is the number of claimed pages that failed to fetch,
	// timed out, or carried a non-HTML content type.
	FetchFailures int `json:"fetch_failures"`

	// URLsVisited is the number of unique URLs claimed for traversal.
	URLsVisited int `json:"urls_visited"`

	// LinksDiscovered is the total number of accepted links across all
	// pages, counting each page's link set once.
	LinksDiscovered int `json:"links_discovered"`

	// RejectedLinks counts filtered link candidates by reject reason.
	RejectedLinks map[string]int `json:"rejected_links,omitempty"`
}
