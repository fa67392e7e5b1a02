package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/championship-draw/models"
)

func newTestAuth(t *testing.T) *authService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(models.Admin{Email: "draws@college.edu", PasswordHash: string(hash)}, "test-secret").(*authService)
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login(context.Background(), models.Credentials{Email: " Draws@College.edu", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "draws@college.edu", claims.Subject)
}

func TestAuthService_LoginRejects(t *testing.T) {
	svc := newTestAuth(t)
	tests := []models.Credentials{
		{Email: "draws@college.edu", Password: "wrong"},
		{Email: "someone@college.edu", Password: "correct horse"},
		{},
	}
	for _, creds := range tests {
		_, err := svc.Login(context.Background(), creds)
		assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
	}
}

func TestAuthService_ParseToken(t *testing.T) {
	svc := newTestAuth(t)
	token, err := svc.Login(context.Background(), models.Credentials{Email: "draws@college.edu", Password: "correct horse"})
	require.NoError(t, err)

	other := NewAuthService(models.Admin{Email: "draws@college.edu"}, "other-secret")
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	svc.now = func() time.Time { return time.Now().Add(-2 * tokenTTL) }
	expired, err := svc.Login(context.Background(), models.Credentials{Email: "draws@college.edu", Password: "correct horse"})
	require.NoError(t, err)
	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
