package service

import (
	"context"
	"time"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
)

// SalonService manages the current salon's profile and settings
type SalonService struct {
	salonRepo repository.SalonRepository
}

// NewSalonService creates a new salon service
func NewSalonService(salonRepo repository.SalonRepository) *SalonService {
	return &SalonService{salonRepo: salonRepo}
}

// Current returns the salon in ctx
func (s *SalonService) Current(ctx context.Context) (*entity.Salon, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if salon == nil {
		return nil, apperror.NewNotFoundError("Salon")
	}
	return salon, nil
}

// UpdateSalonInput holds the editable salon fields. Nil means unchanged.
type UpdateSalonInput struct {
	Name          *string
	Address       *string
	Phone         *string
	Email         *string
	Currency      *string
	Timezone      *string
	InvoicePrefix *string
	ReceiptFooter *string
	TaxID         *string
}

// Update changes the salon profile and settings
func (s *SalonService) Update(ctx context.Context, input *UpdateSalonInput) (*entity.Salon, error) {
	salon, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		salon.Name = *input.Name
	}
	if input.Address != nil {
		salon.Address = input.Address
	}
	if input.Phone != nil {
		salon.Phone = input.Phone
	}
	if input.Email != nil {
		salon.Email = input.Email
	}
	if input.Currency != nil && *input.Currency != "" {
		salon.Settings.Currency = *input.Currency
	}
	if input.Timezone != nil && *input.Timezone != "" {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "timezone", Message: "unknown time zone"}})
		}
		salon.Settings.Timezone = *input.Timezone
	}
	if input.InvoicePrefix != nil {
		salon.Settings.InvoicePrefix = *input.InvoicePrefix
	}
	if input.ReceiptFooter != nil {
		salon.Settings.ReceiptFooter = *input.ReceiptFooter
	}
	if input.TaxID != nil {
		salon.Settings.TaxID = *input.TaxID
	}

	if err := s.salonRepo.Update(ctx, salon); err != nil {
		return nil, err
	}
	return salon, nil
}

// salonLocation returns the salon's time zone, UTC when unset or unknown
func salonLocation(salon *entity.Salon) *time.Location {
	if salon == nil || salon.Settings.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(salon.Settings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
