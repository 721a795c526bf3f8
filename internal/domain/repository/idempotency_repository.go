package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses of sale-creating
// requests. Lookups are scoped to the salon in ctx.
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create stamps the salon from ctx when the key has none
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Delete removes a single key so it can be reused once expired
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired purges expired keys of every salon
	DeleteExpired(ctx context.Context) (int64, error)
}
