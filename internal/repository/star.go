package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

const starColumns = `star_property_id, star_user_id, star_date`

type StarRepository struct {
	db *DB
}

func NewStarRepository(db *DB) *StarRepository {
	return &StarRepository{db: db}
}

// Insert stores a star. The composite primary key arbitrates concurrent
// inserts; the loser gets a StorageError matching domain.ErrDuplicate.
func (r *StarRepository) Insert(ctx context.Context, s *domain.Star) (err error) {
	defer observe("Insert", "stars", time.Now(), &err)

	_, err = r.db.pool.ExecContext(ctx,
		`INSERT INTO stars (`+starColumns+`) VALUES ($1, $2, $3)`,
		s.PropertyID(), s.UserID(), s.Date(),
	)
	return storageError("Insert", err)
}

func (r *StarRepository) Delete(ctx context.Context, propertyID, userID uuid.UUID) (err error) {
	defer observe("Delete", "stars", time.Now(), &err)

	_, err = r.db.pool.ExecContext(ctx,
		`DELETE FROM stars WHERE star_property_id = $1 AND star_user_id = $2`,
		propertyID, userID,
	)
	return storageError("Delete", err)
}

func (r *StarRepository) GetByCompositeKey(ctx context.Context, propertyID, userID uuid.UUID) (s *domain.Star, err error) {
	defer observe("GetByCompositeKey", "stars", time.Now(), &err)

	row := r.db.pool.QueryRowContext(ctx,
		`SELECT `+starColumns+` FROM stars WHERE star_property_id = $1 AND star_user_id = $2`,
		propertyID, userID,
	)
	s, err = scanStar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("GetByCompositeKey", err)
	}
	return s, nil
}

func (r *StarRepository) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (stars []*domain.Star, err error) {
	defer observe("GetByPropertyID", "stars", time.Now(), &err)

	return r.list(ctx, "GetByPropertyID",
		`SELECT `+starColumns+` FROM stars WHERE star_property_id = $1 ORDER BY star_date`,
		propertyID,
	)
}

func (r *StarRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (stars []*domain.Star, err error) {
	defer observe("GetByUserID", "stars", time.Now(), &err)

	return r.list(ctx, "GetByUserID",
		`SELECT `+starColumns+` FROM stars WHERE star_user_id = $1 ORDER BY star_date`,
		userID,
	)
}

func (r *StarRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.Star, error) {
	rows, err := r.db.pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	stars := []*domain.Star{}
	for rows.Next() {
		s, err := scanStar(rows)
		if err != nil {
			return nil, storageError(op, err)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return stars, nil
}

func scanStar(s scanner) (*domain.Star, error) {
	var (
		propertyID uuid.UUID
		userID     uuid.UUID
		date       time.Time
	)
	if err := s.Scan(&propertyID, &userID, &date); err != nil {
		return nil, err
	}
	star, err := domain.NewStar(propertyID, userID, date)
	if err != nil {
		return nil, fmt.Errorf("scanStar: %w", err)
	}
	return star, nil
}
