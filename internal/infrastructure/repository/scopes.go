package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

type ctxKey string

const (
	// SalonIDKey is the context key for the current salon
	SalonIDKey ctxKey = "salon_id"
	txKey      ctxKey = "gorm_tx"
)

// SalonScope returns a GORM scope that filters by the salon in ctx.
// Every query on salon-owned tables goes through it. Without a salon in
// ctx the scope matches nothing.
func SalonScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		salonID, ok := ctx.Value(SalonIDKey).(uuid.UUID)
		if !ok || salonID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("salon_id = ?", salonID)
	}
}

// WithSalon adds the salon ID to ctx
func WithSalon(ctx context.Context, salonID uuid.UUID) context.Context {
	return context.WithValue(ctx, SalonIDKey, salonID)
}

// GetSalonID extracts the salon ID from ctx
func GetSalonID(ctx context.Context) (uuid.UUID, bool) {
	salonID, ok := ctx.Value(SalonIDKey).(uuid.UUID)
	return salonID, ok && salonID != uuid.Nil
}

// conn returns the transaction carried by ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor backed by db. Nested calls open savepoints.
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}
