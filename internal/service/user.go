package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/bankcards/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService is the thin user directory backing auth and card ownership.
type UserService struct {
	store QueryStore
}

func NewUserService(store QueryStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.Queries().GetUser(ctx, id)
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.store.Queries().CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the matching user.
// A wrong password is indistinguishable from an unknown username.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Queries().GetUserByUsername(ctx, username)
	if err != nil {
		return nil, models.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}
