package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halil/studentdesk/internal/app/models"
)

func newTestJWTService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret-key",
		AccessTokenExp: exp,
		TokenIssuer:    "studentdesk.test",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "user@example.com",
		FullName: "Test User",
		Role:     models.RoleAuthority,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	token, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, "authority", claims.Role)
	require.Equal(t, "studentdesk.test", claims.Issuer)
	require.NotEmpty(t, claims.ID, "token should carry a unique jti")
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	token, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	other := NewJWTService(JWTConfig{
		SecretKey:      "a-different-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "studentdesk.test",
	})

	token, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"empty header", "", "", true},
		{"missing prefix", "abc.def.ghi", "", true},
		{"empty token", "Bearer ", "", true},
		{"wrong scheme", "Basic abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, token)
		})
	}
}

func TestGenerateResetToken(t *testing.T) {
	seen := make(map[string]bool)

	for range 50 {
		token, err := GenerateResetToken()
		require.NoError(t, err)
		require.Len(t, token, 64, "token should be 32 random bytes hex encoded")
		require.NotContains(t, seen, token, "tokens must be unique")
		seen[token] = true
	}
}
