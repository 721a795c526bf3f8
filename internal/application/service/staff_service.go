package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

// StaffService manages the salon's staff accounts
type StaffService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(userRepo repository.UserRepository, log *zap.Logger) *StaffService {
	return &StaffService{userRepo: userRepo, log: log}
}

// ListStaff returns a paginated list of the salon's staff
func (s *StaffService) ListStaff(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	return s.userRepo.List(ctx, params, search)
}

// GetStaff returns a staff member of the current salon
func (s *StaffService) GetStaff(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.SalonID != salonID {
		return nil, apperror.NewNotFoundError("Staff member")
	}
	return user, nil
}

// CreateStaffInput represents a new staff account
type CreateStaffInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Password  string
	Role      string
}

// CreateStaff adds a staff account to the current salon
func (s *StaffService) CreateStaff(ctx context.Context, input *CreateStaffInput) (*entity.User, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	role := input.Role
	if role == "" {
		role = entity.RoleCashier
	}
	if !entity.IsValidRole(role) {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "role", Message: "must be owner or cashier"}})
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	user := &entity.User{
		SalonID:   salonID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Role:      role,
		Provider:  "local",
		Active:    true,
	}

	if input.Password != "" {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("staff created", zap.String("salon_id", salonID.String()), zap.String("user_id", user.ID.String()), zap.String("role", role))
	return user, nil
}

// UpdateStaffInput changes a staff member's role or status. Nil means unchanged.
type UpdateStaffInput struct {
	Role   *string
	Active *bool
}

// UpdateStaff changes role or active flag. Owners cannot demote or disable themselves.
func (s *StaffService) UpdateStaff(ctx context.Context, actorID, id uuid.UUID, input *UpdateStaffInput) (*entity.User, error) {
	user, err := s.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !entity.IsValidRole(*input.Role) {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "role", Message: "must be owner or cashier"}})
		}
		if actorID == id && *input.Role != entity.RoleOwner {
			return nil, apperror.NewBadRequestError("You cannot change your own role")
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		if actorID == id && !*input.Active {
			return nil, apperror.NewBadRequestError("You cannot disable your own account")
		}
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
