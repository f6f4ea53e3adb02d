// Package service implements the application's business logic:
// account management and the training statistics derived from the
// cached row sets. Reads go through the table cache; writes append to
// the row store and invalidate the matching cache entry.
package service

import (
	"context"
	"errors"

	"github.com/projetgotham/gotham/internal/cache"
	"github.com/projetgotham/gotham/internal/models"
)

// Validation and auth failures surfaced to handlers. Wrap
// ErrValidation with context about the offending field.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

// RowStore defines the persistence operations required by the
// services.
type RowStore interface {
	// Load returns the current rows of table, in insertion order.
	Load(ctx context.Context, table string) ([]models.Row, error)
	// Append adds one row to table.
	Append(ctx context.Context, table string, row models.Row) error
}

// RowCache defines the read-through cache the services read from.
// *cache.Cache implements it.
type RowCache interface {
	Get(ctx context.Context, table string, load cache.Loader) ([]models.Row, error)
	Invalidate(table string)
}

// readThrough returns the rows of table via the cache, loading from
// the store on miss or expiry.
func readThrough(ctx context.Context, c RowCache, s RowStore, table string) ([]models.Row, error) {
	return c.Get(ctx, table, func(ctx context.Context) ([]models.Row, error) {
		return s.Load(ctx, table)
	})
}
