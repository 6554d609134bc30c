package testutil

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gogitters/apcimap/internal/auth"
	"github.com/gogitters/apcimap/internal/domain"
)

const TestPassword = "password123"

var (
	hashOnce sync.Once
	testHash string
	hashErr  error
)

// PasswordHash returns an Argon2i hash of TestPassword, computed once per
// test binary.
func PasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		testHash, hashErr = auth.HashPassword(TestPassword)
	})
	if hashErr != nil {
		t.Fatalf("hash password: %v", hashErr)
	}
	return testHash
}

// NewTestUser builds an activated user without storing it.
func NewTestUser(t *testing.T, email, username string) *domain.User {
	t.Helper()

	u, err := domain.NewUser(uuid.New(), nil, email, PasswordHash(t), username)
	if err != nil {
		t.Fatalf("build test user %s: %v", email, err)
	}
	return u
}

func SeedTestUser(t *testing.T, db *sql.DB, email, username string) *domain.User {
	t.Helper()

	u := NewTestUser(t, email, username)
	_, err := db.Exec(
		`INSERT INTO users (user_id, user_activation_token, user_email, user_hash, user_username)
		 VALUES ($1, NULL, $2, $3, $4)`,
		u.ID(), u.Email(), u.PasswordHash(), u.Username(),
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestProperty(t *testing.T, db *sql.DB, address, city string) *domain.Property {
	t.Helper()

	p := &domain.Property{
		ID:        uuid.New(),
		Address:   address,
		City:      city,
		Zip:       "87102",
		Latitude:  decimal.RequireFromString("35.084386"),
		Longitude: decimal.RequireFromString("-106.650422"),
		Value:     decimal.RequireFromString("215000.00"),
	}

	_, err := db.Exec(
		`INSERT INTO properties (property_id, property_address, property_city, property_zip,
			property_lat, property_long, property_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Address, p.City, p.Zip, p.Latitude, p.Longitude, p.Value,
	)
	if err != nil {
		t.Fatalf("seed test property %s: %v", address, err)
	}
	return p
}

func CountStars(t *testing.T, db *sql.DB, propertyID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM stars WHERE star_property_id = $1`, propertyID).Scan(&count)
	if err != nil {
		t.Fatalf("count stars for property %s: %v", propertyID, err)
	}
	return count
}
