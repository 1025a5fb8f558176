package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/domain"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/service/auth"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/store"
)

// UserService handles registration and login. Both operations return a
// signed token so the client can proceed straight to authenticated calls.
type UserService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	jwt    auth.JWTService
	logger *slog.Logger
}

// NewUserService creates a UserService.
// If logger is nil, a default logger will be used.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	jwt auth.JWTService,
	logger *slog.Logger,
) *UserService {
	if users == nil {
		panic("users cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if jwt == nil {
		panic("jwt cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		users:  users,
		hasher: hasher,
		jwt:    jwt,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user and returns the user with a signed token.
// Returns ErrEmailExists when the email is already registered; validation
// errors from domain.NewUser pass through unchanged.
func (s *UserService) Register(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login verifies the credentials and returns the user with a signed token.
// Unknown emails and wrong passwords both map to ErrInvalidCredentials so
// responses do not reveal which part failed.
func (s *UserService) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.DebugContext(ctx, "user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}
