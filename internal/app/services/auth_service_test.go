package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halil/studentdesk/internal/app/models"
	"github.com/halil/studentdesk/internal/app/models/dto"
	"github.com/halil/studentdesk/internal/pkg/apperrors"
	"github.com/halil/studentdesk/internal/pkg/auth"
)

// fakeUserRepo is an in-memory IUserRepository for service tests
type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, hashedPassword string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, userID int64, token string, expiry time.Time) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	return nil
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(time.Now()) {
			return u, nil
		}
	}
	return nil, apperrors.ErrInvalidResetToken
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, userID int64) error {
	user, ok := r.users[userID]
	if !ok {
		return nil
	}
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	return nil
}

// fakeMailer records the reset emails it was asked to send
type fakeMailer struct {
	sentTo     []string
	sentTokens []string
}

func (m *fakeMailer) SendPasswordResetEmail(toEmail, _, token string) error {
	m.sentTo = append(m.sentTo, toEmail)
	m.sentTokens = append(m.sentTokens, token)
	return nil
}

func newTestAuthService() (AuthService, *fakeUserRepo, *fakeMailer) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "studentdesk.test",
	})
	svc := NewAuthService(repo, jwtService, mailer, zerolog.Nop())
	return svc, repo, mailer
}

func signupReq() *dto.SignupRequest {
	return &dto.SignupRequest{
		Email:    "user@example.com",
		Password: "secret123",
		FullName: "Test User",
	}
}

func TestSignup(t *testing.T) {
	svc, _, _ := newTestAuthService()

	resp, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token, "signup should log the user in immediately")
	require.Equal(t, "user@example.com", resp.User.Email)
	require.Equal(t, "authority", resp.User.Role)
}

func TestSignup_NormalizesEmail(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	req := signupReq()
	req.Email = "  User@Example.COM  "
	resp, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", resp.User.Email)

	stored, err := repo.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.Password, "password must be stored hashed")
	require.True(t, auth.CheckPassword(stored.Password, "secret123"))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupReq())
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestSignup_CollectsAllViolations(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), &dto.SignupRequest{
		Email:    "not-an-email",
		Password: "short",
		FullName: "",
	})
	require.Error(t, err)

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 3, "every violated field should be reported")
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	_, wrongPassErr := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	_, unknownEmailErr := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})

	require.ErrorIs(t, wrongPassErr, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmailErr, apperrors.ErrInvalidCredentials)
	require.Equal(t, wrongPassErr.Error(), unknownEmailErr.Error(),
		"wrong password and unknown email must be indistinguishable")
}

func TestGetMe(t *testing.T) {
	svc, _, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	me, err := svc.GetMe(context.Background(), created.User.ID)
	require.NoError(t, err)
	require.Equal(t, created.User.Email, me.Email)
	require.Equal(t, created.User.FullName, me.FullName)
}

func TestRequestPasswordReset(t *testing.T) {
	svc, repo, mailer := newTestAuthService()

	created, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	err = svc.RequestPasswordReset(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, mailer.sentTo, 1)
	require.Equal(t, "user@example.com", mailer.sentTo[0])

	stored, err := repo.GetByID(context.Background(), created.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	require.Equal(t, *stored.ResetToken, mailer.sentTokens[0])
	require.True(t, stored.ResetTokenExpiry.After(time.Now()))
}

func TestRequestPasswordReset_UnknownEmailSafe(t *testing.T) {
	svc, _, mailer := newTestAuthService()

	// No error and no observable difference for an unknown address
	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Empty(t, mailer.sentTo)
}

func TestConfirmPasswordReset_SingleUse(t *testing.T) {
	svc, _, mailer := newTestAuthService()

	_, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "user@example.com"))
	token := mailer.sentTokens[0]

	err = svc.ConfirmPasswordReset(context.Background(), token, "brand-new-pass")
	require.NoError(t, err)

	// Old password no longer works, new one does
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "secret123"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "brand-new-pass"})
	require.NoError(t, err)

	// The token was consumed and cannot be redeemed again
	err = svc.ConfirmPasswordReset(context.Background(), token, "another-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestConfirmPasswordReset_ExpiredToken(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	token, err := auth.GenerateResetToken()
	require.NoError(t, err)
	require.NoError(t, repo.SetResetToken(context.Background(), created.User.ID, token, time.Now().Add(-time.Minute)))

	err = svc.ConfirmPasswordReset(context.Background(), token, "brand-new-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestConfirmPasswordReset_BogusToken(t *testing.T) {
	svc, _, _ := newTestAuthService()

	err := svc.ConfirmPasswordReset(context.Background(), "no-such-token", "brand-new-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), created.User.ID, "updated-pass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "updated-pass"})
	require.NoError(t, err)
}

func TestUpdatePassword_TooShort(t *testing.T) {
	svc, _, _ := newTestAuthService()

	created, err := svc.Signup(context.Background(), signupReq())
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), created.User.ID, "abc")
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
