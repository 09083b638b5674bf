package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

// SQLGateway serves sheets from Postgres tables of the same name.
type SQLGateway struct {
	db      *sql.DB
	allowed map[string]bool
}

// NewSQLGateway opens the database at databaseURL. Only the configured sheet
// names may be read.
func NewSQLGateway(ctx context.Context, databaseURL string, sheets domain.SheetNames) (*SQLGateway, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLGatewayFromDB(db, sheets), nil
}

// NewSQLGatewayFromDB wraps an already opened handle.
func NewSQLGatewayFromDB(db *sql.DB, sheets domain.SheetNames) *SQLGateway {
	allowed := make(map[string]bool)
	for _, name := range sheets.All() {
		allowed[name] = true
	}
	return &SQLGateway{db: db, allowed: allowed}
}

// AllRecords returns every row of the table named sheet, in table order.
func (g *SQLGateway) AllRecords(ctx context.Context, sheet string) ([]domain.Record, error) {
	if g.db == nil {
		return nil, fmt.Errorf("database not available")
	}
	if !g.allowed[sheet] {
		return nil, fmt.Errorf("table %q is not allowed", sheet)
	}

	query := "SELECT * FROM " + pgx.Identifier{sheet}.Sanitize()
	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", sheet, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records []domain.Record
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := make(domain.Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (g *SQLGateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}
