package crawler

import (
	"sort"
	"sync"

	"github.com/mkosuda/linkmap/internal/model"
)

// Results is the shared store that concurrent traversal units write into:
// the set of visited pages and the mapping from each fetched page to the
// links discovered on it. It is owned by the Crawler and passed by
// reference rather than living in package globals, so multiple independent
// crawls can coexist in one process.
//
// All methods are safe for concurrent use. MarkVisited performs its
// check-and-insert under one lock acquisition, which is what guarantees
// each URL is claimed by exactly one traversal unit.
type Results struct {
	mu sync.Mutex

	// visited is the set of canonical URLs already claimed for traversal.
	// It grows monotonically and never shrinks.
	visited map[string]struct{}

	// linksByPage maps each fetched page to the links found on it.
	// Each key is written exactly once, by the unit that fetched the page.
	linksByPage map[string]map[string]struct{}

	// pagesFetched counts pages successfully fetched and parsed.
	pagesFetched int

	// fetchFailures counts pages that were claimed but produced no links
	// (network error, timeout, or wrong content type).
	fetchFailures int

	// rejected accumulates link-validation rejections across all pages.
	rejected map[RejectReason]int
}

// NewResults creates an empty result store.
func NewResults() *Results {
	return &Results{
		visited:     make(map[string]struct{}),
		linksByPage: make(map[string]map[string]struct{}),
		rejected:    make(map[RejectReason]int),
	}
}

// MarkVisited attempts to claim a canonical URL for traversal.
// It returns true only for the first caller, so under N concurrent calls
// for the same URL exactly one receives true. A unit must not fetch a URL
// it did not win the insertion race for.
func (r *Results) MarkVisited(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.visited[url]; ok {
		return false
	}
	r.visited[url] = struct{}{}
	return true
}

// RecordPageLinks stores the link set discovered on a fetched page and
// counts the page as fetched. The caller owns the key: each page is
// fetched at most once per crawl, so each key is written at most once.
func (r *Results) RecordPageLinks(pageURL string, links map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(links))
	for link := range links {
		set[link] = struct{}{}
	}
	r.linksByPage[pageURL] = set
	r.pagesFetched++
}

// RecordFetchFailure counts a claimed page that could not be fetched or
// parsed. Failed pages contribute no links and no page entry.
func (r *Results) RecordFetchFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchFailures++
}

// RecordRejections folds one page's link-validation rejections into the
// crawl-wide counts.
func (r *Results) RecordRejections(rejected map[RejectReason]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for reason, n := range rejected {
		r.rejected[reason] += n
	}
}

// VisitedLinks returns every visited canonical URL in sorted order.
// Intended for reporting after the crawl completes.
func (r *Results) VisitedLinks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	links := make([]string, 0, len(r.visited))
	for url := range r.visited {
		links = append(links, url)
	}
	sort.Strings(links)
	return links
}

// LinksByPage returns the page-to-links mapping with each link list in
// sorted order. Intended for reporting after the crawl completes.
func (r *Results) LinksByPage() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := make(map[string][]string, len(r.linksByPage))
	for page, set := range r.linksByPage {
		links := make([]string, 0, len(set))
		for link := range set {
			links = append(links, link)
		}
		sort.Strings(links)
		pages[page] = links
	}
	return pages
}

// Stats returns a snapshot of the crawl counters.
func (r *Results) Stats() model.CrawlStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	rejected := make(map[string]int, len(r.rejected))
	for reason, n := range r.rejected {
		rejected[reason.String()] = n
	}
	discovered := 0
	for _, set := range r.linksByPage {
		discovered += len(set)
	}
	return model.CrawlStats{
		PagesFetched:    r.pagesFetched,
		FetchFailures:   r.fetchFailures,
		URLsVisited:     len(r.visited),
		LinksDiscovered: discovered,
		RejectedLinks:   rejected,
	}
}
