package palette

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const selectColors = `SELECT code, name, visual_hex, extracted_hex, original_link FROM pantone_colors ORDER BY id`

// PostgresSource reads the palette from a pantone_colors table:
//
//	CREATE TABLE pantone_colors (
//	    id            serial PRIMARY KEY,
//	    code          text NOT NULL UNIQUE,
//	    name          text NOT NULL,
//	    visual_hex    text,
//	    extracted_hex text,
//	    original_link text
//	);
type PostgresSource struct {
	DSN string

	// DB, when set, is used instead of opening a connection from DSN.
	DB *sql.DB
}

// NewPostgresSource returns a PostgresSource for the given connection string.
func NewPostgresSource(dsn string) *PostgresSource {
	return &PostgresSource{DSN: dsn}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Load(ctx context.Context) ([]Entry, error) {
	db := s.DB
	if db == nil {
		if s.DSN == "" {
			return nil, fmt.Errorf("%w: postgres DSN is empty", ErrNoSource)
		}
		var err error
		db, err = sql.Open("postgres", s.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
	}

	rows, err := db.QueryContext(ctx, selectColors)
	if err != nil {
		return nil, fmt.Errorf("querying pantone_colors: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var code, name string
		var visual, extracted, link sql.NullString
		if err := rows.Scan(&code, &name, &visual, &extracted, &link); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		entries = append(entries, Entry{
			Code:              code,
			Name:              name,
			ReferenceHex:      visual.String,
			ExtractedHex:      extracted.String,
			OriginalImageLink: link.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return normalize(entries), nil
}
