// Package store provides the persistent download ledger: an append-only
// file of identifiers already downloaded, deduplicated on load.
package store

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"castdl/internal/core"
)

const (
	// bloomCapacity sizes the negative-membership fast path. Ledgers far
	// beyond this still work, with more bloom false positives falling
	// through to the map.
	bloomCapacity          = 100000
	bloomFalsePositiveRate = 0.001

	ledgerFileMode = 0o644
)

// FileLedger is a set of identifiers backed by a line-oriented append
// log. The physical file may contain duplicate lines; membership is
// always the deduplicated set.
type FileLedger struct {
	path  string
	ids   map[string]struct{}
	bloom *bloom.BloomFilter
}

// Open loads the ledger at path. A missing file is an empty ledger, not
// an error; any other read failure is a core.LedgerError.
func Open(path string) (*FileLedger, error) {
	l := &FileLedger{
		path:  path,
		ids:   make(map[string]struct{}),
		bloom: bloom.NewWithEstimates(bloomCapacity, bloomFalsePositiveRate),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, &core.LedgerError{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		l.add(id)
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.LedgerError{Path: path, Err: err}
	}

	return l, nil
}

// Contains checks set membership. The bloom filter answers definite
// misses without touching the map.
func (l *FileLedger) Contains(id string) bool {
	if !l.bloom.TestString(id) {
		return false
	}
	_, ok := l.ids[id]
	return ok
}

// Record durably appends id to the log and adds it to the in-memory set.
// The file handle is scoped to this call and synced and closed on every
// exit path, so entries recorded before a crash are never lost.
// Recording an already-present id is harmless: the loader deduplicates.
func (l *FileLedger) Record(id string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, ledgerFileMode)
	if err != nil {
		return &core.LedgerError{Path: l.path, Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, id); err != nil {
		return &core.LedgerError{Path: l.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &core.LedgerError{Path: l.path, Err: err}
	}

	l.add(id)
	return nil
}

// Size returns the number of distinct identifiers loaded or recorded.
func (l *FileLedger) Size() int {
	return len(l.ids)
}

// Path returns the backing file path.
func (l *FileLedger) Path() string {
	return l.path
}

func (l *FileLedger) add(id string) {
	l.ids[id] = struct{}{}
	l.bloom.AddString(id)
}
