package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

type userRepository interface {
	Insert(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) ([]*domain.User, error)
	Activate(ctx context.Context, token string) (*domain.User, error)
}

type starRepository interface {
	Insert(ctx context.Context, s *domain.Star) error
	Delete(ctx context.Context, propertyID, userID uuid.UUID) error
	GetByCompositeKey(ctx context.Context, propertyID, userID uuid.UUID) (*domain.Star, error)
	GetByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*domain.Star, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Star, error)
}
