package database

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/config"
	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Tenancy and staff
		&entity.Salon{},
		&entity.User{},

		// Catalog and clients
		&entity.ServiceItem{},
		&entity.Product{},
		&entity.Customer{},

		// Transactions
		&entity.Sale{},
		&entity.SaleLine{},
		&entity.SalePayment{},
		&entity.LoyaltyEntry{},
		&entity.Confection{},
		&entity.ConfectionComponent{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the configured salon and its owner when the owner
// e-mail is not registered yet. It does nothing when seeding is not configured.
func SeedDefaultData(db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) error {
	if cfg.OwnerEmail == "" || cfg.OwnerPassword == "" {
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", strings.ToLower(cfg.OwnerEmail)).First(&existing).Error
	if err == nil {
		log.Info("seed owner already exists", zap.String("email", cfg.OwnerEmail))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.OwnerPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	salonName := cfg.SalonName
	if salonName == "" {
		salonName = "Mon Salon"
	}
	firstName, lastName := splitName(cfg.OwnerName)
	if firstName == "" {
		firstName = "Owner"
	}

	return db.Transaction(func(tx *gorm.DB) error {
		salon := &entity.Salon{
			Name:     salonName,
			Slug:     utils.Slugify(salonName) + "-" + strings.ToLower(utils.GenerateReference("S")[2:]),
			Settings: entity.DefaultSalonSettings(),
		}
		if err := tx.Create(salon).Error; err != nil {
			return err
		}

		owner := &entity.User{
			SalonID:   salon.ID,
			FirstName: firstName,
			LastName:  lastName,
			Email:     strings.ToLower(cfg.OwnerEmail),
			Password:  hashed,
			Role:      entity.RoleOwner,
			Active:    true,
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}

		log.Info("seeded salon and owner", zap.String("salon", salon.Name), zap.String("email", owner.Email))
		return tx.Model(salon).Update("owner_id", owner.ID).Error
	})
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}
