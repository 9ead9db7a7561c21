package services

import (
	"context"

	"filevault/internal/domain"
	"filevault/internal/store"
	apperrors "filevault/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService owns user creation and lookup. Password hashes never leave
// this service: every returned user has the hash stripped.
type UserService struct {
	store *store.Store[domain.User]
}

func NewUserService(userStore *store.Store[domain.User]) *UserService {
	return &UserService{store: userStore}
}

type SignUpInput struct {
	UserName string
	Email    string
	Password string
}

func byEmail(email string) store.Scope {
	return store.Where("email = ?", email)
}

// CreateUser registers a new user. A live user with the same email yields
// AlreadyExists; any other persistence failure surfaces as a generic
// creation error without the underlying cause.
func (s *UserService) CreateUser(ctx context.Context, in SignUpInput) (*domain.User, error) {
	existing, err := s.store.FindOne(ctx, byEmail(in.Email))
	if err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{CreatedBy: in.UserName},
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.Save(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	return stripHash(user), nil
}

// VerifyCredentials checks an email/password pair and returns the matching
// user. Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.FindOne(ctx, byEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return stripHash(user), nil
}

// FindByID returns the live user with the given id, or nil.
func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.store.FindOne(ctx, store.ByID(id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return stripHash(user), nil
}

// FindByIDs resolves a set of user ids to live users, omitting misses. The
// sharing engine compares result and request sizes to detect recipients that
// do not exist.
func (s *UserService) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	users, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func stripHash(user *domain.User) *domain.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
