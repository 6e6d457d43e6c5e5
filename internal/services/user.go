package services

import (
	"context"
	"errors"

	"github.com/taskdeck/apiserver/internal/store"
	"github.com/taskdeck/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
}

// UserService encapsulates registration and login use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register hashes the password and creates the user. The returned user never
// carries the hash.
func (s *UserService) Register(ctx context.Context, email, password string) (types.User, error) {
	if email == "" || password == "" {
		return types.User{}, &ValidationError{Message: "Email and password required"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, &ConflictError{Message: "Email already exists"}
		}
		return types.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies the credentials and returns the matching user. An
// unknown email and a wrong password both produce the same AuthError so
// callers cannot enumerate accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	if email == "" || password == "" {
		return types.User{}, &ValidationError{Message: "Email and password required"}
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, &AuthError{Message: "Invalid credentials"}
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, &AuthError{Message: "Invalid credentials"}
	}

	return user, nil
}
