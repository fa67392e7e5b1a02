package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/championship-draw/models"
)

const tokenTTL = 12 * time.Hour

// Claims is the payload of an admin access token.
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, input models.Credentials) (string, error)
	ParseToken(tokenString string) (*Claims, error)
}

type authService struct {
	admin     models.Admin
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService authenticates the single configured draw presenter.
func NewAuthService(admin models.Admin, jwtSecret string) AuthService {
	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}
	return &authService{admin: admin, jwtSecret: []byte(jwtSecret), now: time.Now}
}

func (s *authService) Login(_ context.Context, input models.Credentials) (string, error) {
	if !strings.EqualFold(strings.TrimSpace(input.Email), s.admin.Email) {
		return "", ErrAuthInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrAuthInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := s.now()
	claims := Claims{
		Role: s.admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.admin.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return claims, nil
}
