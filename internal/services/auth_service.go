package services

import (
	"context"
	"time"

	"filevault/config"
	"filevault/internal/domain"
	apperrors "filevault/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService issues and verifies access tokens. The core services never see
// a token; they receive the resolved principal id as an explicit parameter.
type AuthService struct {
	users     *UserService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users *UserService, cfg *config.Config) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type AccessClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// SignUp registers a user and returns the created user with a fresh token.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, string, error) {
	user, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return nil, "", err
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Internal("failed to issue token", err)
	}
	return user, token, nil
}

// SignIn verifies credentials and returns a token. Unknown email and wrong
// password both yield the same Unauthorized.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", apperrors.Internal("failed to issue token", err)
	}
	return token, nil
}

// ParseAccessToken verifies a bearer token and returns the principal id.
func (s *AuthService) ParseAccessToken(token string) (uuid.UUID, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, apperrors.Unauthorized("invalid token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("invalid token")
	}
	return userID, nil
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
