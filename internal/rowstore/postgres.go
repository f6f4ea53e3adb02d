package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/projetgotham/gotham/internal/models"
)

// The sheet_rows table mirrors the shape of the remote spreadsheet:
// every logical table is a named sheet whose rows are ordered,
// schemaless field maps. Insert and select only; rows are never
// updated or deleted.
const schema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    position BIGSERIAL PRIMARY KEY,
    sheet TEXT NOT NULL,
    fields JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS sheet_rows_sheet_idx ON sheet_rows (sheet);
`

// Open connects to PostgreSQL, verifies the connection and ensures the
// schema exists.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// Postgres implements Store on top of a PostgreSQL database.
type Postgres struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgres creates a Postgres store using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// Load fetches all rows of the given sheet in insertion order.
func (s *Postgres) Load(ctx context.Context, table string) ([]models.Row, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT fields FROM sheet_rows WHERE sheet = $1 ORDER BY position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	var result []models.Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var row models.Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	return result, nil
}

// Append inserts one row at the end of the given sheet.
func (s *Postgres) Append(ctx context.Context, table string, row models.Row) error {
	fields, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, fields) VALUES ($1, $2)
	`, table, fields)
	if err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}
