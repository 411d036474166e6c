package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// RejectReason identifies why a candidate href was filtered out during
// link extraction. Rejection is silent at crawl time (filtering, not an
// error), but naming the outcome lets callers and tests assert on causes
// instead of just absence.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides
// human-readable output for reports and logs.
type RejectReason int

const (
	// RejectNone means the candidate survived validation.
	RejectNone RejectReason = iota

	// RejectEmptyHref means the anchor had an empty href attribute.
	RejectEmptyHref

	// RejectUnsupportedForm means the href is neither root-relative nor an
	// http(s) absolute URL: fragment-only, protocol-relative, mailto:,
	// javascript:, and similar forms are never followed.
	RejectUnsupportedForm

	// RejectUnparseable means the resolved string could not be parsed as
	// a URL.
	RejectUnparseable

	// RejectCrossDomain means the resolved URL's host differs from the
	// root domain's host. Cross-domain links are never followed.
	RejectCrossDomain

	// RejectExcludedPath means the resolved URL's root path segment is in
	// the domain's exclusion set.
	RejectExcludedPath
)

// String returns a human-readable representation of the reject reason.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "accepted"
	case RejectEmptyHref:
		return "empty href"
	case RejectUnsupportedForm:
		return "unsupported form"
	case RejectUnparseable:
		return "unparseable"
	case RejectCrossDomain:
		return "cross domain"
	case RejectExcludedPath:
		return "excluded path"
	default:
		return "unknown"
	}
}

// ExtractResult holds the outcome of link extraction for one page.
type ExtractResult struct {
	// Links is the set of validated, canonical, same-domain links found
	// on the page. Duplicate hrefs collapse to one entry.
	Links map[string]struct{}

	// Rejected counts filtered candidates by reason. Accepted candidates
	// are not counted here.
	Rejected map[RejectReason]int
}

// Extract parses an HTML document and returns the set of links worth
// following: every anchor href that resolves to a canonical, same-domain,
// non-excluded absolute URL. Anchors without an href attribute are skipped
// entirely and do not count as rejections.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on the web and gives us a
// proper node tree to walk.
func Extract(content io.Reader, rootDomain string, excluded ExcludedPaths) (*ExtractResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		Links:    make(map[string]struct{}),
		Rejected: make(map[RejectReason]int),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := anchorHref(n); ok {
				link, reason := ValidateLink(href, rootDomain, excluded)
				if reason == RejectNone {
					result.Links[link] = struct{}{}
				} else {
					result.Rejected[reason]++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// ValidateLink resolves and validates a single candidate href against the
// crawl's root domain and exclusion set. On success it returns the
// canonical absolute URL and RejectNone; otherwise it returns the reason
// the candidate was discarded.
//
// Root-relative hrefs ("/path") are resolved by concatenation onto the
// root domain; hrefs starting with "http" are taken as already absolute.
// Everything else is rejected without error.
func ValidateLink(href, rootDomain string, excluded ExcludedPaths) (string, RejectReason) {
	if href == "" {
		return "", RejectEmptyHref
	}

	var absolute string
	switch {
	case strings.HasPrefix(href, "//"):
		// Protocol-relative hrefs are neither root-relative paths nor
		// absolute URLs; they are never followed.
		return "", RejectUnsupportedForm
	case !strings.HasPrefix(href, "http") && strings.HasPrefix(href, "/"):
		absolute = rootDomain + href
	case strings.HasPrefix(href, "http"):
		absolute = href
	default:
		return "", RejectUnsupportedForm
	}

	u, err := url.Parse(absolute)
	if err != nil {
		return "", RejectUnparseable
	}
	root, err := url.Parse(rootDomain)
	if err != nil {
		return "", RejectUnparseable
	}

	// Hosts are case-insensitive, so case-variant spellings of the same
	// page must collapse to one canonical URL before the visited-set
	// claim. Lowercasing here is what keeps "at most one fetch per page"
	// true for hrefs like "https://EXAMPLE.com/x".
	u.Host = strings.ToLower(u.Host)
	if !strings.EqualFold(u.Host, root.Host) {
		return "", RejectCrossDomain
	}

	if segment, ok := RootPathSegment(u.Path); ok && excluded.Contains(segment) {
		return "", RejectExcludedPath
	}

	return Canonicalize(u.String()), RejectNone
}

// anchorHref returns the value of the anchor's href attribute.
// The second return value is false when the attribute is absent, which
// callers treat as "skip this element" rather than a rejection.
func anchorHref(n *html.Node) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return attr.Val, true
		}
	}
	return "", false
}
