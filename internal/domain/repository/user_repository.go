package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// UserRepository defines the interface for staff data operations.
// Lookups by e-mail are global because e-mail identifies a login.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// List returns the staff of the salon in ctx
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error)
}
