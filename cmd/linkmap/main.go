// Package main provides the entry point for the linkmap CLI.
//
// linkmap is a same-domain web crawler. It starts from a seed URL,
// honors the site's robots.txt Disallow rules, and maps every internal
// link it can reach.
//
// Usage:
//
//	linkmap crawl <url>
//	linkmap crawl --file <url>
//
// See --help for all available options.
package main

// main is the entry point for linkmap.
func main() {
	Execute()
}
