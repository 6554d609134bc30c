package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

const propertyColumns = `property_id, property_address, property_city, property_zip,
	property_lat, property_long, property_value`

// PropertyRepository is read-only; property records are loaded out of band.
type PropertyRepository struct {
	db *DB
}

func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (p *domain.Property, err error) {
	defer observe("GetByID", "properties", time.Now(), &err)

	row := r.db.pool.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE property_id = $1`, id,
	)
	p, err = scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("GetByID", err)
	}
	return p, nil
}

func (r *PropertyRepository) GetByCity(ctx context.Context, city string) (props []*domain.Property, err error) {
	defer observe("GetByCity", "properties", time.Now(), &err)

	rows, err := r.db.pool.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE property_city = $1 ORDER BY property_address`,
		city,
	)
	if err != nil {
		return nil, storageError("GetByCity", err)
	}
	defer rows.Close()

	props = []*domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, storageError("GetByCity", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("GetByCity", err)
	}
	return props, nil
}

func scanProperty(s scanner) (*domain.Property, error) {
	var p domain.Property
	err := s.Scan(
		&p.ID, &p.Address, &p.City, &p.Zip,
		&p.Latitude, &p.Longitude, &p.Value,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
