package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkosuda/linkmap/internal/model"
)

// Fixed artifact filenames used when file output is requested.
const (
	// AllLinksFilename holds the JSON array of all visited URLs.
	AllLinksFilename = "all_links.json"

	// LinksByPageFilename holds the JSON object mapping each visited
	// page to its discovered links.
	LinksByPageFilename = "links_by_page.json"
)

// WriteFiles writes the two JSON artifacts to their fixed filenames under
// dir, creating the directory if needed. An empty dir means the current
// directory.
func WriteFiles(report *model.CrawlReport, dir string) error {
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := writeArtifact(filepath.Join(dir, AllLinksFilename), report, (*JSONWriter).WriteAllLinks); err != nil {
		return err
	}
	return writeArtifact(filepath.Join(dir, LinksByPageFilename), report, (*JSONWriter).WriteLinksByPage)
}

// writeArtifact writes one artifact to path using the given JSONWriter
// method.
func writeArtifact(path string, report *model.CrawlReport, write func(*JSONWriter, *model.CrawlReport) (int, error)) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path is derived from user-requested output dir
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", path, err)
	}
	defer f.Close()

	if _, err := write(NewJSONWriter(f, WithPrettyPrint()), report); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}
