package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

// SeedAccount is an account created by the seeder if absent.
type SeedAccount struct {
	Username string
	Password string
	Role     string
}

// DefaultSeedAccounts returns the administrator and student accounts.
func DefaultSeedAccounts(adminPassword, studentPassword string) []SeedAccount {
	return []SeedAccount{
		{Username: "admin@email.com", Password: adminPassword, Role: domain.RoleAdministrator},
		{Username: "student@email.com", Password: studentPassword, Role: domain.RoleStudent},
	}
}

// Seeder provisions the fixed roles and the initial accounts.
type Seeder struct {
	store ports.IdentityProvisioner
	log   zerolog.Logger
}

func NewSeeder(store ports.IdentityProvisioner, log zerolog.Logger) *Seeder {
	return &Seeder{store: store, log: log}
}

// Seed creates every known role, then each account that does not exist yet.
// Existing accounts keep their password and get their role re-granted.
// Safe to run repeatedly.
func (s *Seeder) Seed(ctx context.Context, accounts []SeedAccount) error {
	for _, role := range domain.KnownRoles {
		if err := s.store.EnsureRole(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}

	for _, acct := range accounts {
		if err := s.seedAccount(ctx, acct); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAccount(ctx context.Context, acct SeedAccount) error {
	existing, err := s.store.FindByUsername(ctx, acct.Username)
	if err == nil {
		s.log.Debug().Str("username", acct.Username).Msg("seed account exists")
		return s.grant(ctx, existing.ID, acct)
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("seed account %s: %w", acct.Username, err)
	}
	if acct.Password == "" {
		return fmt.Errorf("seed account %s: password is empty", acct.Username)
	}

	hash, err := HashPassword(acct.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		Username:     acct.Username,
		Email:        acct.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("seed account %s: %w", acct.Username, err)
	}
	if err := s.grant(ctx, user.ID, acct); err != nil {
		return err
	}

	s.log.Info().Str("username", acct.Username).Str("role", acct.Role).Msg("seed account created")
	return nil
}

// grant is idempotent, so an account left without its role by an
// interrupted run is repaired on the next one.
func (s *Seeder) grant(ctx context.Context, userID string, acct SeedAccount) error {
	if err := s.store.AssignRole(ctx, userID, acct.Role); err != nil {
		return fmt.Errorf("seed account %s: assign %s: %w", acct.Username, acct.Role, err)
	}
	return nil
}
