// Package report provides report generation and output functionality.
//
// This package contains writers for the crawl's output artifacts:
//   - JSONWriter: the two pretty-printed JSON artifacts (the array of all
//     visited URLs and the page-to-links object), to stdout or to files
//   - MarkdownWriter: a human-readable Markdown crawl report
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so new output formats can be added
// without touching the core data. Writers implement the Writer interface,
// allowing them to be composed for multi-format output.
package report
