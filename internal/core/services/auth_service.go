package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type AuthService interface {
	Register(ctx context.Context, username, password, address string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	UserID  domain.UserID  `json:"user_id"`
	Address domain.Address `json:"address"`
	jwt.RegisteredClaims
}

type authService struct {
	users          ports.UserRepository
	jwtSecret      []byte
	accessTokenTTL time.Duration
	clock          ports.Clock
}

func NewAuthService(users ports.UserRepository, jwtSecret string, accessTokenTTL time.Duration, clock ports.Clock) AuthService {
	return &authService{
		users:          users,
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
		clock:          clock,
	}
}

func (s *authService) Register(ctx context.Context, username, password, address string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Username:     username,
		PasswordHash: string(hash),
		Address:      domain.Address(address),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredential
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredential
	}
	return s.generateToken(user)
}

func (s *authService) generateToken(user *domain.User) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID:  user.ID,
		Address: user.Address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
