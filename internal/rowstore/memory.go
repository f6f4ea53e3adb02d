package rowstore

import (
	"context"
	"sync"

	"github.com/projetgotham/gotham/internal/models"
)

// Memory is an in-memory Store used by tests and local development.
// Rows keep their insertion order, like the sheet.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][]models.Row
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][]models.Row)}
}

// Load returns a copy of the rows of table.
func (m *Memory) Load(ctx context.Context, table string) ([]models.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]models.Row, len(m.sheets[table]))
	copy(rows, m.sheets[table])
	return rows, nil
}

// Append adds one row at the end of table.
func (m *Memory) Append(ctx context.Context, table string, row models.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[table] = append(m.sheets[table], row)
	return nil
}
