package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"tavola/internal/models"
	"tavola/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(tokenStr string) (*models.AdminClaims, error)
}

type service struct {
	adminRepo repositories.AdminRepository
	secret    []byte
	tokenTTL  time.Duration
}

// NewService creates the admin auth service. The JWT secret is injected
// at startup; there is no fallback value.
func NewService(adminRepo repositories.AdminRepository, jwtSecret string) Service {
	return &service{
		adminRepo: adminRepo,
		secret:    []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("login failed: no admin for %s", email)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		log.Printf("login failed: bad password for admin %d", admin.ID)
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := models.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "tavola-api",
			Subject:   admin.Email,
		},
		AdminID: admin.ID,
		Email:   admin.Email,
		Role:    admin.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) ParseToken(tokenStr string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
