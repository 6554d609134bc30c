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

const userColumns = `user_id, user_activation_token, user_email, user_hash, user_username`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) (err error) {
	defer observe("Insert", "users", time.Now(), &err)

	_, err = r.db.pool.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		u.ID(), nullString(u.ActivationToken()), u.Email(), u.PasswordHash(), u.Username(),
	)
	return storageError("Insert", err)
}

// Update writes every mutable column. Updating an id that is not stored
// affects no rows and is not an error.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	defer observe("Update", "users", time.Now(), &err)

	_, err = r.db.pool.ExecContext(ctx,
		`UPDATE users
		SET user_activation_token = $2, user_email = $3, user_hash = $4, user_username = $5
		WHERE user_id = $1`,
		u.ID(), nullString(u.ActivationToken()), u.Email(), u.PasswordHash(), u.Username(),
	)
	return storageError("Update", err)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer observe("Delete", "users", time.Now(), &err)

	_, err = r.db.pool.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	return storageError("Delete", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (u *domain.User, err error) {
	defer observe("GetByID", "users", time.Now(), &err)

	row := r.db.pool.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id,
	)
	return scanOptionalUser("GetByID", row)
}

// GetByActivationToken validates the token format before querying.
func (r *UserRepository) GetByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	token, err := domain.ValidateActivationToken(token)
	if err != nil {
		return nil, err
	}
	return r.getByActivationToken(ctx, token)
}

func (r *UserRepository) getByActivationToken(ctx context.Context, token string) (u *domain.User, err error) {
	defer observe("GetByActivationToken", "users", time.Now(), &err)

	row := r.db.pool.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_activation_token = $1`, token,
	)
	return scanOptionalUser("GetByActivationToken", row)
}

// GetByEmail validates and normalizes the email before querying.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email, err := domain.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	return r.getByEmail(ctx, email)
}

func (r *UserRepository) getByEmail(ctx context.Context, email string) (u *domain.User, err error) {
	defer observe("GetByEmail", "users", time.Now(), &err)

	row := r.db.pool.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_email = $1`, email,
	)
	return scanOptionalUser("GetByEmail", row)
}

// GetByUsername returns every user whose username matches, in storage order.
// No match yields an empty slice.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (users []*domain.User, err error) {
	username, err = domain.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	defer observe("GetByUsername", "users", time.Now(), &err)

	rows, err := r.db.pool.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_username = $1`, username,
	)
	if err != nil {
		return nil, storageError("GetByUsername", err)
	}
	defer rows.Close()

	users = []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageError("GetByUsername", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("GetByUsername", err)
	}
	return users, nil
}

// Activate clears the activation token of the user holding it. The row is
// locked for the duration of the transaction so a token can only be redeemed
// once. Returns (nil, nil) when no user holds the token.
func (r *UserRepository) Activate(ctx context.Context, token string) (u *domain.User, err error) {
	token, err = domain.ValidateActivationToken(token)
	if err != nil {
		return nil, err
	}
	defer observe("Activate", "users", time.Now(), &err)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("Activate", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_activation_token = $1 FOR UPDATE`, token,
	)
	u, err = scanOptionalUser("Activate", row)
	if err != nil || u == nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET user_activation_token = NULL WHERE user_id = $1`, u.ID(),
	); err != nil {
		return nil, storageError("Activate", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("Activate", fmt.Errorf("commit: %w", err))
	}

	u.ClearActivationToken()
	return u, nil
}

func scanOptionalUser(op string, row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return u, nil
}

// scanUser rebuilds a user through the domain constructor so stored rows are
// held to the same rules as new ones.
func scanUser(s scanner) (*domain.User, error) {
	var (
		id       uuid.UUID
		token    sql.NullString
		email    string
		hash     string
		username string
	)
	if err := s.Scan(&id, &token, &email, &hash, &username); err != nil {
		return nil, err
	}

	var tokenPtr *string
	if token.Valid {
		tokenPtr = &token.String
	}
	u, err := domain.NewUser(id, tokenPtr, email, hash, username)
	if err != nil {
		return nil, fmt.Errorf("scanUser: %w", err)
	}
	return u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
