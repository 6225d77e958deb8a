package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedURL means the input URL matches none of the known
	// source shapes. Raised before any network call.
	ErrUnsupportedURL = errors.New("unsupported source URL")

	// ErrMissingCredentials means Spotify credentials are required for
	// this source kind but absent. Raised before any network call.
	ErrMissingCredentials = errors.New("missing spotify credentials")

	// ErrNoMediaLink means an episode description contained no
	// extractable media link. Item-level, never run-fatal.
	ErrNoMediaLink = errors.New("no media link in description")
)

// SourceFetchError wraps an upstream listing fetch failure. Run-fatal:
// it aborts resolution for the whole source.
type SourceFetchError struct {
	Source string
	Err    error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetching %s listing: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// LedgerError wraps a ledger I/O failure. Run-fatal: continuing without
// a working ledger would re-download everything on the next run.
type LedgerError struct {
	Path string
	Err  error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Path, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// DownloadError wraps a single failed downloader invocation. Item-level:
// one item's failure never aborts the batch.
type DownloadError struct {
	URL    string
	Auth   AuthMode
	Stderr string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("download %s (auth %s): %v: %s", e.URL, e.Auth, e.Err, e.Stderr)
	}
	return fmt.Sprintf("download %s (auth %s): %v", e.URL, e.Auth, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
