// Package model defines the data structures shared across the application:
// the finished crawl report and its statistics. Keeping these separate from
// the crawler lets the report writers and the database depend on plain data
// without pulling in crawling logic.
package model
