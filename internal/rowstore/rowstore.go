// Package rowstore provides access to the backing row store: one
// logical table per entity kind, each a sequence of rows mapping field
// names to raw values. The store is append-only; no update or delete
// operation exists for any table.
package rowstore

import (
	"context"

	"github.com/projetgotham/gotham/internal/models"
)

// Table names of the backing store. These are the only valid tables;
// they double as the cache key set.
const (
	TableUsers        = "users"
	TableExercises    = "exercises"
	TablePerformances = "performances"
)

// Tables lists every table in store order.
var Tables = []string{TableUsers, TableExercises, TablePerformances}

// Store is the collaborator boundary to the backing row store.
type Store interface {
	// Load returns the current rows of table, in insertion order.
	Load(ctx context.Context, table string) ([]models.Row, error)
	// Append adds one row to table. The store assigns no identifiers;
	// callers generate them before calling.
	Append(ctx context.Context, table string, row models.Row) error
}
