package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/ports"
)

// Postgres-backed implementation of the RateRepository port.
type PostgresRateRepository struct{ DB *sql.DB }

var _ ports.RateRepository = (*PostgresRateRepository)(nil)

func NewPostgresRateRepository(db *sql.DB) *PostgresRateRepository {
	return &PostgresRateRepository{DB: db}
}

// Return the matrix with the latest effective_at for equipment and level.
func (r *PostgresRateRepository) LatestRateMatrix(ctx context.Context, equipment, level string) (*domain.RateMatrix, error) {
	if r.DB == nil {
		return nil, errors.New("postgres rate repository: DB is nil")
	}

	query := `
	SELECT equipment, level, effective_at, rates::text
	FROM rate_matrices
	WHERE equipment = $1 AND level = $2
	ORDER BY effective_at DESC
	LIMIT 1;
	`

	var m domain.RateMatrix
	var payload string
	err := r.DB.QueryRowContext(ctx, query, equipment, level).Scan(&m.Equipment, &m.Level, &m.EffectiveAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest rate matrix %s/%s: query: %w", equipment, level, err)
	}

	if err := json.Unmarshal([]byte(payload), &m.Rates); err != nil {
		return nil, fmt.Errorf("latest rate matrix %s/%s: decode rates: %w", equipment, level, err)
	}
	return &m, nil
}
