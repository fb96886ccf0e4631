package engine

import (
	"bytes"
	"encoding/gob"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/extremofile"
)

// stableIDTable assigns a stable integer id to each device OS name, so a
// node whose name matches a previously-seen one gets the same id back
// (spec.md §3), and persists that assignment to disk (SPEC_FULL.md §3's
// added durability requirement) so a restarted process keeps the mapping.
type stableIDTable struct {
	mu    sync.Mutex
	next  int32
	ids   map[string]int32
	store io.Writer
}

func newStableIDTable() *stableIDTable {
	return &stableIDTable{ids: make(map[string]int32), next: 1}
}

// openStableIDTable additionally loads and persists through an extremofile
// store rooted at dir. Used by cmd/asyncinputd; the in-memory-only table
// returned by newStableIDTable is enough for library callers who don't need
// cross-restart durability.
func openStableIDTable(dir string) (*stableIDTable, error) {
	t := newStableIDTable()
	data, w, err := extremofile.Open(dir)
	if extremofile.IsCritical(err) {
		return nil, errors.Annotate(err, "engine: open stable id table")
	}
	if len(data) > 0 {
		if decErr := gob.NewDecoder(bytes.NewReader(data)).Decode(&t.ids); decErr == nil {
			for _, id := range t.ids {
				if id >= t.next {
					t.next = id + 1
				}
			}
		}
	}
	t.store = w
	return t, nil
}

// assign returns the id for name, allocating and persisting a new one if
// name has never been seen.
func (t *stableIDTable) assign(name string) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := t.next
	t.next++
	t.ids[name] = id
	t.persist()
	return id
}

func (t *stableIDTable) persist() {
	if t.store == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.ids); err != nil {
		return
	}
	t.store.Write(buf.Bytes())
}
