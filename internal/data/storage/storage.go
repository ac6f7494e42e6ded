// Package storage persists scored refreshes to Postgres for offline
// history. It is write-only from the service's point of view; nothing on
// the request path reads it back.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/auralabs/aura/internal/models"

	_ "github.com/lib/pq"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStorage{db: db}

	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return s, nil
}

// SaveSnapshot stores one scored refresh. Every project in the set is
// written under the same refresh timestamp so a whole pass can be
// reconstructed later.
func (s *PostgresStorage) SaveSnapshot(ctx context.Context, variant string, projects []models.ScoredProject) error {
	query := `
        INSERT INTO score_snapshots (
            project, category, variant, aura_score, aura_rank,
            annualized_revenue, ecosystem_revenue, fdv, current_price,
            amount_raised, refreshed_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
    `

	refreshedAt := time.Now()
	for _, p := range projects {
		_, err := s.db.ExecContext(ctx, query,
			p.Name,
			p.Category,
			variant,
			nullableScore(float64(p.AuraScore)),
			p.AuraRank,
			p.AnnualizedRevenue,
			nullable(p.EcosystemRevenue),
			nullable(p.FDV),
			nullable(p.CurrentPrice),
			p.AmountRaised,
			refreshedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save snapshot for %s: %w", p.Name, err)
		}
	}

	return nil
}

// nullableScore maps non-finite scores onto NULL, matching their JSON
// rendering.
func nullableScore(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *PostgresStorage) initTables() error {
	query := `CREATE TABLE IF NOT EXISTS score_snapshots (
		id SERIAL PRIMARY KEY,
		project VARCHAR(100) NOT NULL,
		category VARCHAR(50),
		variant VARCHAR(20) NOT NULL,
		aura_score NUMERIC(18, 4),
		aura_rank INT,
		annualized_revenue NUMERIC(20, 2),
		ecosystem_revenue NUMERIC(20, 2),
		fdv NUMERIC(20, 2),
		current_price NUMERIC(18, 8),
		amount_raised NUMERIC(20, 2),
		refreshed_at TIMESTAMP NOT NULL
	)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
