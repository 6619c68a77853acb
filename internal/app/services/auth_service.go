package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/app/repositories"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
	"github.com/halil/studentdesk/internal/pkg/auth"
	"github.com/halil/studentdesk/internal/pkg/email"
	"github.com/halil/studentdesk/internal/pkg/validation"
)

// resetTokenTTL is how long a password reset token stays redeemable
const resetTokenTTL = time.Hour

// AuthService defines the interface for authentication operations
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetMe(ctx context.Context, userID int64) (*dto.UserResponse, error)
	RequestPasswordReset(ctx context.Context, emailAddr string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, userID int64, newPassword string) error
}

// authService implements AuthService
type authService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	mailer     email.Mailer
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	mailer email.Mailer,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		mailer:     mailer,
		logger:     logger,
	}
}

// normalizeEmail lowercases and trims an email address so lookups and the
// unique constraint are case insensitive.
func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}

func validatePassword(password string, violations *[]string) {
	if password == "" {
		*violations = append(*violations, "password is required")
	} else if len(password) < validation.PasswordMinLength {
		*violations = append(*violations, fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength))
	}
}

// Signup registers a new account and returns a session token so the client
// is logged in immediately.
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	emailAddr := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	var violations []string
	if emailAddr == "" {
		violations = append(violations, "email is required")
	} else if !validation.IsValidEmail(emailAddr) {
		violations = append(violations, "email must be a valid email address")
	}
	validatePassword(req.Password, &violations)
	if fullName == "" {
		violations = append(violations, "fullName is required")
	} else if len(fullName) > validation.NameMaxLength {
		violations = append(violations, fmt.Sprintf("fullName cannot exceed %d characters", validation.NameMaxLength))
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	// Early duplicate check avoids a wasted bcrypt round; the unique
	// constraint in Create still catches the race.
	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &models.User{
		Email:    emailAddr,
		Password: hashedPassword,
		FullName: fullName,
		Role:     models.RoleAuthority,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User registered")

	return s.buildAuthResponse(user)
}

// Login verifies credentials and returns a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	emailAddr := normalizeEmail(req.Email)

	var violations []string
	if emailAddr == "" {
		violations = append(violations, "email is required")
	}
	if req.Password == "" {
		violations = append(violations, "password is required")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations...)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

// GetMe returns the profile of the authenticated user
func (s *authService) GetMe(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
	}, nil
}

// RequestPasswordReset issues a single-use reset token and emails it to the
// user. It succeeds whether or not the email belongs to an account, so the
// endpoint cannot be used to probe which addresses are registered.
func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return apperrors.NewValidationError("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName, token); err != nil {
		// Do not leak account existence through a delivery failure
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset email")
	}

	return nil
}

// ConfirmPasswordReset redeems a reset token for a new password. The token is
// cleared on success so it cannot be used again.
func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	var violations []string
	if token == "" {
		violations = append(violations, "token is required")
	}
	validatePassword(newPassword, &violations)
	if len(violations) > 0 {
		return apperrors.NewValidationError(violations...)
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	if err := s.userRepo.ClearResetToken(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset completed")
	return nil
}

// UpdatePassword changes the password of the authenticated user
func (s *authService) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	var violations []string
	validatePassword(newPassword, &violations)
	if len(violations) > 0 {
		return apperrors.NewValidationError(violations...)
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, hashedPassword)
}

func (s *authService) buildAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success: true,
		Token:   token,
		User: dto.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
		},
	}, nil
}
