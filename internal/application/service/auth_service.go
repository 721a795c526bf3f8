package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/oauth"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo    repository.UserRepository
	salonRepo   repository.SalonRepository
	tx          repository.Transactor
	jwtManager  *utils.JWTManager
	googleOAuth *oauth.GoogleOAuthService
	log         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	salonRepo repository.SalonRepository,
	tx repository.Transactor,
	jwtManager *utils.JWTManager,
	googleOAuth *oauth.GoogleOAuthService,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		salonRepo:   salonRepo,
		tx:          tx,
		jwtManager:  jwtManager,
		googleOAuth: googleOAuth,
		log:         log,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	Salon        *entity.Salon
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Login authenticates a staff member and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.signIn(ctx, user)
}

// RegisterInput creates a salon together with its owner account
type RegisterInput struct {
	SalonName string
	Address   *string
	Phone     *string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a new salon and its owner, then signs the owner in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, input.SalonName)
	if err != nil {
		return nil, err
	}

	salon := &entity.Salon{
		Name:     strings.TrimSpace(input.SalonName),
		Slug:     slug,
		Address:  input.Address,
		Phone:    input.Phone,
		Settings: entity.DefaultSalonSettings(),
	}
	user := &entity.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      entity.RoleOwner,
		Provider:  "local",
		Active:    true,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.salonRepo.Create(ctx, salon); err != nil {
			return err
		}
		user.SalonID = salon.ID
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		salon.OwnerID = &user.ID
		return s.salonRepo.Update(ctx, salon)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("salon registered", zap.String("salon_id", salon.ID.String()), zap.String("slug", salon.Slug))
	return s.signIn(ctx, user)
}

func (s *AuthService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "salon"
	}
	slug := base
	for i := 0; i < 5; i++ {
		exists, err := s.salonRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = strings.ToLower(utils.GenerateReference(base))
	}
	return "", apperror.NewConflictError("Could not allocate a salon identifier")
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issue(ctx, user)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if user.Password != "" && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// UpdateProfileInput represents the update profile input
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     *string
}

// UpdateProfile updates the user's profile
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GoogleAuthURL returns the consent page URL and the state to verify on callback
func (s *AuthService) GoogleAuthURL() (string, string, error) {
	if s.googleOAuth == nil || !s.googleOAuth.IsConfigured() {
		return "", "", apperror.NewAppError(503, oauth.ErrOAuthNotConfigured.Error())
	}
	state, err := oauth.NewState()
	if err != nil {
		return "", "", err
	}
	return s.googleOAuth.GetAuthURL(state), state, nil
}

// GoogleLogin signs in an existing staff member with a Google authorization code.
// Accounts are never created here: staff are added by the salon owner.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	if s.googleOAuth == nil || !s.googleOAuth.IsConfigured() {
		return nil, apperror.NewAppError(503, oauth.ErrOAuthNotConfigured.Error())
	}

	token, err := s.googleOAuth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	info, err := s.googleOAuth.GetUserInfo(ctx, token)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return nil, apperror.NewForbiddenError(err.Error())
		}
		return nil, apperror.NewBadRequestError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewForbiddenError("No staff account for this Google e-mail")
	}

	if user.ProviderID == nil {
		user.ProviderID = &info.ID
		user.Provider = "google"
	} else if *user.ProviderID != info.ID {
		return nil, apperror.NewForbiddenError("Google account does not match this staff member")
	}

	return s.signIn(ctx, user)
}

// signIn records the login time and issues tokens
func (s *AuthService) signIn(ctx context.Context, user *entity.User) (*LoginOutput, error) {
	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *entity.User) (*LoginOutput, error) {
	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}

	salon, err := s.salonRepo.GetByID(ctx, user.SalonID)
	if err != nil {
		return nil, err
	}
	if salon == nil {
		return nil, apperror.ErrAccountDisabled
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(utils.TokenSubject{
		UserID:      user.ID,
		SalonID:     user.SalonID,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: user.Permissions(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		Salon:        salon,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}
