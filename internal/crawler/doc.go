// Package crawler implements same-domain web crawling: given a seed URL it
// discovers every reachable page on that domain by following anchor links,
// honoring the domain's robots.txt Disallow rules.
//
// # Architecture
//
// The package is designed around the Crawler type, which owns all shared
// crawl state and drives a bounded worker pool over a queue of pending
// URLs. Workers fetch a page, extract and validate its links, record the
// page-to-links mapping, atomically claim unseen links in the visited set,
// and enqueue the links they won. The crawl terminates when the pending
// count drains to zero: at that point the queue is empty and no worker can
// produce new work.
//
// # Components
//
//   - Crawler: fetch loop, worker pool, and termination
//   - Extract/ValidateLink: HTML link extraction and the validation
//     pipeline, with named RejectReason outcomes
//   - Results: the shared visited set and page-link map with atomic
//     check-and-insert claiming
//   - LoadExcludedPaths: one-time robots.txt acquisition, reduced to a set
//     of excluded root path segments
//   - RootDomain/Canonicalize/RootPathSegment: URL normalization
//
// # Guarantees
//
//   - A page is fetched at most once per crawl, ever. MarkVisited performs
//     check-and-insert as one operation, so two workers can never both win
//     the claim for a URL.
//   - Cross-domain links and links under an excluded root path segment are
//     never followed.
//   - The exclusion policy is fully populated before the first page fetch.
//   - Per-page failures (network errors, timeouts, non-HTML content,
//     unparseable bodies) end that one page's processing without affecting
//     the rest of the crawl. There are no retries.
//
// # Usage
//
//	c := crawler.New(crawler.WithWorkers(8))
//	results, err := c.Crawl(ctx, "https://example.com")
package crawler
