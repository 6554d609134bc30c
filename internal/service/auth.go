package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/auth"
	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/metrics"
)

type AuthService struct {
	users     userRepository
	jwtSecret string
	jwtExpiry time.Duration
	publicURL string
}

func NewAuthService(users userRepository, jwtSecret string, jwtExpiry time.Duration, publicURL string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		publicURL: publicURL,
	}
}

type SignUpInput struct {
	Email    string
	Username string
	Password string
}

// SignUp stores a new, not yet activated account and logs the activation
// link. Duplicate emails or usernames surface as domain.ErrDuplicate.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	log := logging.FromContext(ctx)

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}
	token, err := auth.NewActivationToken()
	if err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}

	user, err := domain.NewUser(uuid.New(), &token, in.Email, hash, in.Username)
	if err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}

	log.Info("account created",
		"user_id", user.ID(),
		"activation_link", s.activationLink(token),
	)
	return user, nil
}

// Activate redeems an activation token. Unknown tokens are domain.ErrNotFound.
func (s *AuthService) Activate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.users.Activate(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("Activate: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("Activate: %w", domain.ErrNotFound)
	}

	logging.FromContext(ctx).Info("account activated", "user_id", user.ID())
	return user, nil
}

type SignInResult struct {
	User  *domain.User
	Token string
}

// SignIn checks credentials and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	result, err := s.signIn(ctx, email, password)
	switch {
	case err == nil:
		metrics.SignInsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrBadCredentials):
		metrics.SignInsTotal.WithLabelValues("bad_credentials").Inc()
	case errors.Is(err, domain.ErrNotActivated):
		metrics.SignInsTotal.WithLabelValues("not_activated").Inc()
	default:
		metrics.SignInsTotal.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *AuthService) signIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("SignIn: %w", domain.ErrBadCredentials)
		}
		return nil, fmt.Errorf("SignIn: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("SignIn: %w", domain.ErrBadCredentials)
	}

	if err := auth.ComparePassword(user.PasswordHash(), password); err != nil {
		return nil, fmt.Errorf("SignIn: %w", domain.ErrBadCredentials)
	}

	if !user.Activated() {
		return nil, fmt.Errorf("SignIn: %w", domain.ErrNotActivated)
	}

	token, err := auth.GenerateToken(user.ID(), user.Username(), s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("SignIn: %w", err)
	}

	return &SignInResult{User: user, Token: token}, nil
}

func (s *AuthService) activationLink(token string) string {
	return s.publicURL + "/activation?" + url.Values{"activation": {token}}.Encode()
}
