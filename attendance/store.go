/*
store.go - Persistence contract for the entry list

PURPOSE:
  Defines the interface between the tracker and wherever entries live.
  The whole list is read and written at once: the data set is small (a
  couple of months of shifts) and both backends store it as one JSON
  document.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: local key-value store (one key, one JSON array)
  - store/memory/memory.go: in-memory store for tests and :memory: mode
  - store/github/github.go: remote JSON file behind a file-contents API

CONSISTENCY:
  Local stores are last-writer-wins. The remote store uses the file's
  version token for optimistic concurrency and returns
  ErrConcurrentModification when it is stale. There is no merge.

SEE ALSO:
  - tracker/tracker.go: owns the in-memory list and calls the store
  - errors.go: error taxonomy
*/
package attendance

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store loads and saves the full entry list.
type Store interface {
	// Load returns every stored entry. A store that has never been written
	// returns an empty list, not an error.
	Load(ctx context.Context) ([]Entry, error)

	// Save replaces the stored list.
	Save(ctx context.Context, entries []Entry) error
}

// EncodeEntries serializes the list as an indented JSON array.
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// DecodeEntries parses a JSON array of entries. Empty input is an empty list.
func DecodeEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
