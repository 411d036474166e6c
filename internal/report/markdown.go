package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/mkosuda/linkmap/internal/model"
)

// MarkdownWriter outputs a crawl report in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides type-safe tables, lists, and
// GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full crawl report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeRejections(md, report)
	w.writePages(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root Domain", "`" + report.RootDomain + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
			{"URLs Visited", strconv.Itoa(report.Stats.URLsVisited)},
			{"Pages Fetched", strconv.Itoa(report.Stats.PagesFetched)},
			{"Fetch Failures", strconv.Itoa(report.Stats.FetchFailures)},
			{"Links Discovered", strconv.Itoa(report.Stats.LinksDiscovered)},
		},
	})
	md.PlainText("")

	if report.Stats.FetchFailures > 0 {
		md.Notef("%d page(s) could not be fetched and contribute no links.", report.Stats.FetchFailures)
		md.PlainText("")
	}
}

// writeRejections writes the link-rejection summary.
func (w *MarkdownWriter) writeRejections(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Stats.RejectedLinks) == 0 {
		return
	}

	md.H2("Rejected Links")
	md.PlainText("")

	reasons := make([]string, 0, len(report.Stats.RejectedLinks))
	for reason := range report.Stats.RejectedLinks {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	rows := make([][]string, 0, len(reasons))
	for _, reason := range reasons {
		rows = append(rows, []string{reason, strconv.Itoa(report.Stats.RejectedLinks[reason])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the per-page link listings.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Links by Page")
	md.PlainText("")

	if len(report.LinksByPage) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
		return
	}

	// AllLinks is sorted, so iterating it keeps page order stable.
	for _, page := range report.AllLinks {
		links, ok := report.LinksByPage[page]
		if !ok {
			continue
		}
		md.H3("`" + page + "`")
		if len(links) == 0 {
			md.PlainText("No links found.")
		} else {
			md.BulletList(links...)
		}
		md.PlainText("")
	}
}
