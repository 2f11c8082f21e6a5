package gateway

import "sync"

// Snapshot is a page together with the query that produced it.
type Snapshot struct {
	Query ItemQuery
	Page  *Page
}

// Table tracks overlapping queries for one paged view. Every query takes a
// ticket from Begin; Resolve keeps a response only if no later ticket has
// already been applied, so an older response that arrives last cannot
// overwrite newer data.
type Table struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	shown   Snapshot
}

func (t *Table) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Resolve applies p, fetched with q, for ticket n when n is newer than the
// last applied ticket. It returns the snapshot that should be displayed and
// whether p was applied. The snapshot carries its own query so paging
// controls always match the rows.
func (t *Table) Resolve(n uint64, q ItemQuery, p *Page) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= t.applied {
		return t.shown, false
	}
	t.applied = n
	t.shown = Snapshot{Query: q, Page: p}
	return t.shown, true
}

// Latest returns the most recently applied snapshot; Page is nil before
// the first one.
func (t *Table) Latest() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}
