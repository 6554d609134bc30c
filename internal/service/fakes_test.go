package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.User
	failErr error
	updated int
	deleted int
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		f.byID[u.ID()] = u
	}
	return f
}

func (f *fakeUsers) Insert(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	for _, existing := range f.byID {
		if existing.Email() == u.Email() || existing.Username() == u.Username() {
			return &domain.StorageError{Op: "Insert", Err: context.Canceled, Duplicate: true}
		}
	}
	f.byID[u.ID()] = u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated++
	if _, ok := f.byID[u.ID()]; ok {
		f.byID[u.ID()] = u
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted++
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.byID[id], nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email, err := domain.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.User{}
	for _, u := range f.byID {
		if u.Username() == username {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Activate(_ context.Context, token string) (*domain.User, error) {
	if _, err := domain.ValidateActivationToken(token); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if t := u.ActivationToken(); t != nil && *t == token {
			u.ClearActivationToken()
			return u, nil
		}
	}
	return nil, nil
}

type starKey struct {
	property uuid.UUID
	user     uuid.UUID
}

type fakeStars struct {
	mu    sync.Mutex
	stars map[starKey]*domain.Star
}

func newFakeStars() *fakeStars {
	return &fakeStars{stars: map[starKey]*domain.Star{}}
}

func (f *fakeStars) Insert(_ context.Context, s *domain.Star) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := starKey{s.PropertyID(), s.UserID()}
	if _, ok := f.stars[k]; ok {
		return &domain.StorageError{Op: "Insert", Err: context.Canceled, Duplicate: true}
	}
	f.stars[k] = s
	return nil
}

func (f *fakeStars) Delete(_ context.Context, propertyID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stars, starKey{propertyID, userID})
	return nil
}

func (f *fakeStars) GetByCompositeKey(_ context.Context, propertyID, userID uuid.UUID) (*domain.Star, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stars[starKey{propertyID, userID}], nil
}

func (f *fakeStars) GetByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*domain.Star, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Star{}
	for k, s := range f.stars {
		if k.property == propertyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStars) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Star, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Star{}
	for k, s := range f.stars {
		if k.user == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
