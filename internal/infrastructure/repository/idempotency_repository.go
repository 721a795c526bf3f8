package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Where("key = ? AND user_id = ?", key, userID).
		First(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	if ikey.SalonID == uuid.Nil {
		salonID, ok := GetSalonID(ctx)
		if !ok {
			return errors.New("idempotency key requires a salon context")
		}
		ikey.SalonID = salonID
	}
	return conn(ctx, r.db).Create(ikey).Error
}

func (r *idempotencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Where("id = ?", id).
		Delete(&entity.IdempotencyKey{}).Error
}

// DeleteExpired runs from the background purge, outside any salon
func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
