package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
)

// SalonRepository defines the interface for salon data operations
type SalonRepository interface {
	Create(ctx context.Context, salon *entity.Salon) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Salon, error)
	Update(ctx context.Context, salon *entity.Salon) error
	// SlugExists checks if a slug is already taken
	SlugExists(ctx context.Context, slug string) (bool, error)
}
