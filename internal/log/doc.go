// Package log provides logging utilities for linkmap.
//
// The crawler logs every skipped page together with its URL, and crawled
// URLs can embed basic-auth userinfo or session-bearing query parameters.
// SanitizingHandler wraps any slog.Handler and masks those values before
// records are written, so no log statement has to remember to do it.
package log
