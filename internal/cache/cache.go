// Package cache provides the read-through table cache that shields the
// row store from redundant reads. Each entry maps a table name to the
// rows returned by the last successful load and the time of that load;
// entries go stale after a TTL and can be cleared explicitly by
// writers, which gives them read-your-own-write visibility without
// waiting out the TTL.
//
// The key set is fixed at construction time. Asking for a table that
// was never registered is a programming error and panics.
//
// Known limitation, inherited from the source design: a write to the
// store and the matching Invalidate are two separate steps. A crash
// between them leaves the cache serving stale rows until the TTL runs
// out.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/projetgotham/gotham/internal/models"
)

// DefaultTTL is how long a loaded row set stays fresh.
const DefaultTTL = 30 * time.Second

// Loader fetches the current rows of one table from the backing store.
type Loader func(ctx context.Context) ([]models.Row, error)

// entry holds the cached state of one table. The mutex covers the
// whole check-age/load/store sequence of Get as well as Invalidate, so
// a load that began before an invalidation can never commit after it.
// Loads for the same table are therefore serialized; a hanging store
// call blocks requests for that table only.
type entry struct {
	mu       sync.Mutex
	rows     []models.Row
	loadedAt time.Time
	loaded   bool
}

// Cache is a TTL cache over a fixed set of table names. It is safe for
// concurrent use.
type Cache struct {
	ttl     time.Duration
	entries map[string]*entry

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a Cache for exactly the given table names. A ttl of zero
// or less falls back to DefaultTTL.
func New(ttl time.Duration, tables ...string) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	entries := make(map[string]*entry, len(tables))
	for _, t := range tables {
		entries[t] = &entry{}
	}
	return &Cache{ttl: ttl, entries: entries, now: time.Now}
}

// Get returns the rows for table. If the entry is missing or older
// than the TTL, load is called synchronously and its result replaces
// the entry; otherwise the stored rows are returned and load is not
// called. A load error propagates to the caller and leaves the entry
// exactly as it was.
func (c *Cache) Get(ctx context.Context, table string, load Loader) ([]models.Row, error) {
	e := c.entry(table)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded && c.now().Sub(e.loadedAt) <= c.ttl {
		return e.rows, nil
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	e.rows = rows
	e.loadedAt = c.now()
	e.loaded = true
	return rows, nil
}

// Invalidate clears the entry for table so that the next Get reloads
// it regardless of age.
func (c *Cache) Invalidate(table string) {
	e := c.entry(table)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = nil
	e.loadedAt = time.Time{}
	e.loaded = false
}

func (c *Cache) entry(table string) *entry {
	e, ok := c.entries[table]
	if !ok {
		panic(fmt.Sprintf("cache: unknown table %q", table))
	}
	return e
}
