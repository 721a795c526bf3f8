package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

type salonRepository struct {
	db *gorm.DB
}

// NewSalonRepository creates a new salon repository
func NewSalonRepository(db *gorm.DB) domainRepo.SalonRepository {
	return &salonRepository{db: db}
}

func (r *salonRepository) Create(ctx context.Context, salon *entity.Salon) error {
	return conn(ctx, r.db).Create(salon).Error
}

func (r *salonRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error) {
	var salon entity.Salon
	err := conn(ctx, r.db).First(&salon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &salon, err
}

func (r *salonRepository) GetBySlug(ctx context.Context, slug string) (*entity.Salon, error) {
	var salon entity.Salon
	err := conn(ctx, r.db).First(&salon, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &salon, err
}

func (r *salonRepository) Update(ctx context.Context, salon *entity.Salon) error {
	return conn(ctx, r.db).Save(salon).Error
}

func (r *salonRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Salon{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
