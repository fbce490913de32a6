package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campus-locations-placeholder"), bcrypt.DefaultCost)

// AuthService implements credential verification and token issuance.
type AuthService struct {
	store  ports.CredentialStore
	issuer ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, issuer ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, issuer: issuer, log: log}
}

// Authenticate verifies username/password and returns a signed token carrying
// the user's roles. Unknown users and wrong passwords both yield
// domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.log.Warn().Str("username", username).Msg("login rejected")
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("authenticate: find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return "", domain.ErrInvalidCredentials
	}

	roles, err := s.store.Roles(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("authenticate: load roles: %w", err)
	}

	tkn, err := s.issuer.Issue(user, roles)
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}

	s.log.Info().Str("username", username).Strs("roles", roles).Msg("user logged in")
	return tkn, nil
}

// HashPassword returns the bcrypt hash stored for a new account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
