package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// discardLogger returns a logger that drops everything, keeping test
// output clean while exercising the logging paths.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSite is a small in-memory site for end-to-end crawl tests.
// Pages are keyed by path; values are HTML bodies served as text/html.
type testSite struct {
	mu    sync.Mutex
	hits  map[string]int
	pages map[string]string
}

func newTestSite(pages map[string]string) *testSite {
	return &testSite{
		hits:  make(map[string]int),
		pages: pages,
	}
}

func (s *testSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/image.png":
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not html"))
	case r.URL.Path == "/robots.txt":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	default:
		body, ok := s.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}
}

func (s *testSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TestCrawl tests end-to-end traversal of a small site.
func TestCrawl(t *testing.T) {
	t.Parallel()

	t.Run("discovers all reachable same-domain pages", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(map[string]string{
			"/": `<a href="/a">a</a>
				<a href="/b">b</a>
				<a href="/private/secret">hidden</a>
				<a href="https://external.org/away">away</a>`,
			"/a": `<a href="/">home</a><a href="/b">b</a>`,
			"/b": `<a href="/image.png">img</a>`,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(WithWorkers(4), WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		wantVisited := []string{
			srv.URL,
			srv.URL + "/a",
			srv.URL + "/b",
			srv.URL + "/image.png",
		}
		visited := results.VisitedLinks()
		if len(visited) != len(wantVisited) {
			t.Fatalf("expected %d visited URLs, got %d: %v", len(wantVisited), len(visited), visited)
		}
		visitedSet := make(map[string]struct{}, len(visited))
		for _, u := range visited {
			visitedSet[u] = struct{}{}
		}
		for _, want := range wantVisited {
			if _, ok := visitedSet[want]; !ok {
				t.Errorf("expected %q to be visited", want)
			}
		}

		// The excluded path must never be fetched or claimed.
		if site.hitCount("/private/secret") != 0 {
			t.Error("excluded page was fetched")
		}

		// The non-HTML resource is claimed and fetched once, but it
		// contributes no page entry and no new links.
		byPage := results.LinksByPage()
		if _, ok := byPage[srv.URL+"/image.png"]; ok {
			t.Error("non-HTML page must not appear in the page-link map")
		}
		if len(byPage) != 3 {
			t.Errorf("expected 3 page entries, got %d", len(byPage))
		}
	})

	t.Run("every page is fetched at most once", func(t *testing.T) {
		t.Parallel()

		// Heavily cross-linked pages maximize claim races.
		site := newTestSite(map[string]string{
			"/":  `<a href="/a">a</a><a href="/b">b</a><a href="/c">c</a>`,
			"/a": `<a href="/">h</a><a href="/b">b</a><a href="/c">c</a>`,
			"/b": `<a href="/">h</a><a href="/a">a</a><a href="/c">c</a>`,
			"/c": `<a href="/">h</a><a href="/a">a</a><a href="/b">b</a>`,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(WithWorkers(8), WithLogger(discardLogger()))
		if _, err := c.Crawl(context.Background(), srv.URL); err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		for _, path := range []string{"/", "/a", "/b", "/c"} {
			if got := site.hitCount(path); got != 1 {
				t.Errorf("expected exactly 1 fetch of %q, got %d", path, got)
			}
		}
	})

	t.Run("page-link map keys are all visited", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(map[string]string{
			"/":  `<a href="/a">a</a>`,
			"/a": `<a href="/b">b</a>`,
			"/b": ``,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		visited := make(map[string]struct{})
		for _, u := range results.VisitedLinks() {
			visited[u] = struct{}{}
		}
		for page := range results.LinksByPage() {
			if _, ok := visited[page]; !ok {
				t.Errorf("page %q has a link entry but was never claimed", page)
			}
		}
	})

	t.Run("fetch failures are local to one page", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(map[string]string{
			"/":  `<a href="/gone">gone</a><a href="/a">a</a>`,
			"/a": ``,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		stats := results.Stats()
		if stats.PagesFetched != 2 {
			t.Errorf("expected 2 pages fetched, got %d", stats.PagesFetched)
		}
		if stats.FetchFailures != 1 {
			t.Errorf("expected 1 fetch failure, got %d", stats.FetchFailures)
		}
	})

	t.Run("unparseable seed is a fatal input error", func(t *testing.T) {
		t.Parallel()

		c := New(WithLogger(discardLogger()))
		if _, err := c.Crawl(context.Background(), "not a url at all\x00"); err == nil {
			t.Error("expected error for unparseable seed")
		}
		if _, err := c.Crawl(context.Background(), "/relative/only"); err == nil {
			t.Error("expected error for seed without host")
		}
	})

	t.Run("seed with trailing slash maps to one canonical page", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(map[string]string{
			"/": `<a href="/">self</a>`,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL+"/")
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		visited := results.VisitedLinks()
		if len(visited) != 1 || visited[0] != srv.URL {
			t.Errorf("expected only %q to be visited, got %v", srv.URL, visited)
		}
	})

	t.Run("slow pages time out without stalling the crawl", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<a href="/slow">slow</a><a href="/fast">fast</a>`))
		})
		mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		})
		mux.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		c := New(WithTimeout(50*time.Millisecond), WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		stats := results.Stats()
		if stats.FetchFailures != 1 {
			t.Errorf("expected 1 timeout failure, got %d", stats.FetchFailures)
		}
		if stats.PagesFetched != 2 {
			t.Errorf("expected 2 pages fetched, got %d", stats.PagesFetched)
		}
	})

	t.Run("content type must be exactly text/html", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<a href="/charset">c</a><a href="/plain">p</a>`))
		})
		mux.HandleFunc("/charset", func(w http.ResponseWriter, r *http.Request) {
			// The raw header is compared verbatim, so the charset
			// parameter makes this page non-HTML for the crawl.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<a href="/never">n</a>`))
		})
		mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		c := New(WithLogger(discardLogger()))
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		stats := results.Stats()
		if stats.FetchFailures != 1 {
			t.Errorf("expected the charset page to be skipped, got %d failures", stats.FetchFailures)
		}
		if _, ok := results.LinksByPage()[srv.URL+"/charset"]; ok {
			t.Error("charset-parameterized page must not contribute a page entry")
		}
		for _, u := range results.VisitedLinks() {
			if strings.HasSuffix(u, "/never") {
				t.Error("links on a skipped page must never be claimed")
			}
		}
	})

	t.Run("extra excluded paths extend the robots rules", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(map[string]string{
			"/":  `<a href="/a">a</a><a href="/internal/tools">tools</a>`,
			"/a": ``,
		})
		srv := httptest.NewServer(site)
		t.Cleanup(srv.Close)

		c := New(
			WithExcludedPaths([]string{"/internal"}),
			WithLogger(discardLogger()),
		)
		results, err := c.Crawl(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}

		for _, u := range results.VisitedLinks() {
			if strings.Contains(u, "/internal") {
				t.Errorf("expected extra excluded path to be skipped, visited %q", u)
			}
		}
		if site.hitCount("/internal/tools") != 0 {
			t.Error("extra excluded page was fetched")
		}
	})
}
