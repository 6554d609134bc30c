package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
)

type UserService struct {
	users userRepository
}

func NewUserService(users userRepository) *UserService {
	return &UserService{users: users}
}

// GetByID returns nil when no such user exists.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) ([]*domain.User, error) {
	users, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return users, nil
}

// GetByEmail returns nil when no such user exists.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

type UpdateUserInput struct {
	Username string
	Email    string
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
	}

	if err := u.SetUsername(in.Username); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	if err := u.SetEmail(in.Email); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	logging.FromContext(ctx).Info("user updated", "user_id", id)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if u == nil {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}
