package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/metrics"
)

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

type DB struct {
	pool *sql.DB
}

func NewDB(pool *sql.DB) *DB {
	return &DB{pool: pool}
}

func (d *DB) Conn() *sql.DB {
	return d.pool
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.PingContext(ctx)
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return tx, nil
}

// storageError converts a driver failure into a *domain.StorageError. Unique
// violations are flagged so callers can match domain.ErrDuplicate.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	var pqErr *pq.Error
	dup := errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
	return &domain.StorageError{Op: op, Err: err, Duplicate: dup}
}

// observe records query metrics for op against table. Use with a named error
// return: defer observe("GetByID", "users", time.Now(), &err).
func observe(op, table string, start time.Time, err *error) {
	metrics.ObserveQuery(op, table, start, *err)
}
