package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"salesight/internal/config"
)

// PostgresSource reads opportunity records from a warehouse table, as an
// alternate sync origin for deployments that mirror the ERP export into
// Postgres.
type PostgresSource struct {
	cfg config.PostgresConfig
	db  *sql.DB
}

// NewPostgres opens and pings the connection.
func NewPostgres(cfg config.PostgresConfig) (*PostgresSource, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresSource{cfg: cfg, db: db}, nil
}

// Close releases the connection pool.
func (p *PostgresSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Fetch reads every row of the configured table into generic records.
func (p *PostgresSource) Fetch(ctx context.Context) ([]map[string]any, error) {
	// Table name comes from configuration, not user input.
	query := fmt.Sprintf("SELECT * FROM %s", p.cfg.Table)

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			val := values[i]
			// Drivers commonly return strings as byte slices.
			if b, ok := val.([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = val
			}
		}
		result = append(result, rowMap)
	}

	return result, rows.Err()
}
