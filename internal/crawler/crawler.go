package crawler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default crawl settings. The CLI exposes these as flags; the values here
// keep the crawler usable as a library without configuration.
const (
	// DefaultTimeout is the per-request timeout for page fetches.
	// The robots.txt fetch deliberately carries no timeout.
	DefaultTimeout = 3 * time.Second

	// DefaultWorkers bounds crawl concurrency. The reachable page set of
	// a site is unbounded, so concurrency must not be proportional to it.
	DefaultWorkers = 16

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "linkmap/1.0 (+https://github.com/mkosuda/linkmap)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// Pages larger than this are truncated before parsing.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// queueBuffer is the pending-URL channel capacity. Workers that find
	// the buffer full hand the send off to a goroutine so the pool never
	// deadlocks on its own queue.
	queueBuffer = 1024

	// htmlContentType is the only Content-Type header value accepted for
	// page fetches. The comparison is against the raw header: a response
	// declaring "text/html; charset=utf-8" is skipped, not parsed.
	htmlContentType = "text/html"
)

// Crawler discovers every reachable page on a single domain by following
// anchor links from a seed URL. It owns the shared crawl state (visited
// set, page-link map, exclusion set) and drives a bounded worker pool over
// a queue of pending URLs.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because the traversal semantics are the whole point
// of the tool: exactly-once claiming of URLs, root-segment robots
// exclusion, and strict same-host scoping are easier to guarantee (and to
// test) directly than to coax out of a general-purpose framework.
type Crawler struct {
	// client is the HTTP client for page fetches, carrying the
	// per-request timeout.
	client *http.Client

	// robotsClient is the HTTP client for the one-time robots.txt fetch.
	// It has no timeout.
	robotsClient *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// workers is the number of concurrent fetch workers.
	workers int

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger receives per-page failure logs at debug level.
	logger *slog.Logger

	// extraExcluded holds paths excluded in addition to the domain's
	// robots.txt rules, reduced to root segments before the crawl starts.
	extraExcluded []string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithTimeout sets the per-request timeout for page fetches.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(c *Crawler) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithExcludedPaths excludes additional paths from the crawl on top of
// the domain's robots.txt rules. Each path is reduced to its root segment,
// matching the robots exclusion semantics.
func WithExcludedPaths(paths []string) Option {
	return func(c *Crawler) {
		c.extraExcluded = append(c.extraExcluded, paths...)
	}
}

// WithLogger sets the logger for per-page diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Crawler with the given options.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		client:       &http.Client{Timeout: DefaultTimeout},
		robotsClient: &http.Client{},
		userAgent:    DefaultUserAgent,
		workers:      DefaultWorkers,
		maxBodySize:  DefaultMaxBodySize,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl traverses every reachable same-domain page starting from seedURL
// and returns the populated result store. Only two things can fail before
// traversal starts: an unparseable seed and a seed without a host. Every
// failure after that point is local to one page.
//
// The exclusion policy is fetched to completion before the first page
// fetch, so no link-validation decision ever races against it.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (*Results, error) {
	root, err := RootDomain(seedURL)
	if err != nil {
		return nil, err
	}

	excluded := LoadExcludedPaths(ctx, c.robotsClient, root, c.userAgent)
	for _, path := range c.extraExcluded {
		if segment, ok := RootPathSegment(path); ok {
			excluded[segment] = struct{}{}
		}
	}
	c.logger.Debug("exclusion policy loaded", "rootDomain", root, "excludedPaths", len(excluded))

	results := NewResults()

	seed := Canonicalize(seedURL)
	results.MarkVisited(seed)

	// pending counts claimed URLs not yet fully processed. When it drains
	// to zero no worker can produce new work, so the queue closes and the
	// pool winds down. This is the termination condition: queue empty and
	// no worker active.
	queue := make(chan string, queueBuffer)
	var pending sync.WaitGroup
	pending.Add(1)
	queue <- seed

	go func() {
		pending.Wait()
		close(queue)
	}()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for pageURL := range queue {
				c.crawlPage(ctx, root, excluded, results, pageURL, queue, &pending)
			}
			return nil
		})
	}

	// Workers never return errors; per-page failures are swallowed at the
	// unit boundary so one bad page cannot abort the crawl.
	_ = g.Wait() //nolint:errcheck // always nil

	return results, nil
}

// crawlPage processes one claimed URL: fetch, parse, record, and enqueue
// newly claimed links. Exactly one crawlPage call happens per visited URL.
func (c *Crawler) crawlPage(ctx context.Context, root string, excluded ExcludedPaths, results *Results, pageURL string, queue chan<- string, pending *sync.WaitGroup) {
	defer pending.Done()

	// After cancellation the pool keeps draining the queue without
	// fetching so the pending count still reaches zero.
	if ctx.Err() != nil {
		return
	}

	body, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		c.logger.Debug("page skipped", "url", pageURL, "error", err)
		results.RecordFetchFailure()
		return
	}

	extracted, err := Extract(bytes.NewReader(body), root, excluded)
	if err != nil {
		c.logger.Debug("page unparseable", "url", pageURL, "error", err)
		results.RecordFetchFailure()
		return
	}

	results.RecordPageLinks(pageURL, extracted.Links)
	results.RecordRejections(extracted.Rejected)

	for link := range extracted.Links {
		if !results.MarkVisited(link) {
			continue
		}
		pending.Add(1)
		select {
		case queue <- link:
		default:
			// Queue full; hand the send off so this worker can keep
			// consuming. The closer waits on pending, which cannot drain
			// before this send completes, so the channel is still open.
			go func(l string) { queue <- l }(link)
		}
	}
}

// fetchHTML performs one page fetch and returns the body when the response
// declares the content type "text/html", compared against the raw header
// value. Parameterized variants like "text/html; charset=utf-8" are
// skipped along with every other content type: non-HTML resources are
// never followed or recorded.
func (c *Crawler) fetchHTML(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != htmlContentType {
		return nil, ErrNotHTML
	}

	return io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
}
