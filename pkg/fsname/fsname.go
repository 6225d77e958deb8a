// Package fsname builds deterministic, filesystem-safe names for
// downloaded media files.
package fsname

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// UnknownDate is the date segment used when the upload date is not known.
	UnknownDate = "unknown-date"
	// MaxTitleBytes bounds the sanitized title segment. The date and ID
	// segments are never truncated since they carry the dedup and
	// ordering semantics.
	MaxTitleBytes = 180
	// DefaultTitle replaces titles that sanitize down to nothing.
	DefaultTitle = "untitled"
)

var (
	illegalChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Build returns `<date>_<title>_<id>.<ext>` where date is YYYY-MM-DD or
// "unknown-date" for a zero uploadDate. The result is identical for
// identical inputs on every call.
func Build(uploadDate time.Time, title, id, ext string) string {
	date := UnknownDate
	if !uploadDate.IsZero() {
		date = uploadDate.Format("2006-01-02")
	}

	return fmt.Sprintf("%s_%s_%s.%s", date, SanitizeTitle(title), id, ext)
}

// SanitizeTitle strips characters illegal in filenames on the common
// filesystems (path separators, control characters, quotes and friends),
// collapses whitespace and truncates to MaxTitleBytes at a rune boundary.
func SanitizeTitle(title string) string {
	title = illegalChars.ReplaceAllString(title, "_")
	title = whitespace.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if title == "" {
		return DefaultTitle
	}

	return truncate(title, MaxTitleBytes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return strings.TrimSpace(s[:limit])
}
