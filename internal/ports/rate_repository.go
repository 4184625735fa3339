package ports

import (
	"context"
	"lane-posting-service/internal/domain"
)

// Port: latest published rate matrices per equipment class.
type RateRepository interface {
	// Return the most recent matrix for equipment and level ("spot" or "contract").
	// Returns ErrNotFound when nothing has been published.
	LatestRateMatrix(ctx context.Context, equipment, level string) (*domain.RateMatrix, error)
}
