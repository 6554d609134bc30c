package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/metrics"
)

type StarService struct {
	stars starRepository
}

func NewStarService(stars starRepository) *StarService {
	return &StarService{stars: stars}
}

// Star records that userID starred propertyID. Starring twice is not an
// error: the second call reports created=false.
func (s *StarService) Star(ctx context.Context, propertyID, userID uuid.UUID) (bool, error) {
	star, err := domain.NewStar(propertyID, userID, nil)
	if err != nil {
		return false, fmt.Errorf("Star: %w", err)
	}

	err = s.stars.Insert(ctx, star)
	if errors.Is(err, domain.ErrDuplicate) {
		metrics.StarsTotal.WithLabelValues("duplicate").Inc()
		logging.FromContext(ctx).Info("property already starred",
			"property_id", propertyID,
			"user_id", userID,
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Star: %w", err)
	}

	metrics.StarsTotal.WithLabelValues("created").Inc()
	logging.FromContext(ctx).Info("property starred",
		"property_id", propertyID,
		"user_id", userID,
	)
	return true, nil
}

func (s *StarService) Unstar(ctx context.Context, propertyID, userID uuid.UUID) error {
	star, err := s.stars.GetByCompositeKey(ctx, propertyID, userID)
	if err != nil {
		return fmt.Errorf("Unstar: %w", err)
	}
	if star == nil {
		return fmt.Errorf("Unstar: %w", domain.ErrNotFound)
	}

	if err := s.stars.Delete(ctx, propertyID, userID); err != nil {
		return fmt.Errorf("Unstar: %w", err)
	}
	return nil
}

// Get returns nil when the pair has no star.
func (s *StarService) Get(ctx context.Context, propertyID, userID uuid.UUID) (*domain.Star, error) {
	star, err := s.stars.GetByCompositeKey(ctx, propertyID, userID)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return star, nil
}

func (s *StarService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Star, error) {
	stars, err := s.stars.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return stars, nil
}

func (s *StarService) CountForProperty(ctx context.Context, propertyID uuid.UUID) (int, error) {
	stars, err := s.stars.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return 0, fmt.Errorf("CountForProperty: %w", err)
	}
	return len(stars), nil
}
