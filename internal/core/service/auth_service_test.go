package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusloc/locations-api/internal/core/domain"
)

type stubCredentialStore struct {
	users    map[string]*domain.User
	roles    map[string][]string
	findErr  error
	rolesErr error
}

func newStubCredentialStore(t *testing.T) *stubCredentialStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("_Password01"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &stubCredentialStore{
		users: map[string]*domain.User{
			"admin@email.com": {ID: "1", Username: "admin@email.com", Email: "admin@email.com", PasswordHash: string(hash)},
		},
		roles: map[string][]string{"1": {domain.RoleAdministrator}},
	}
}

func (s *stubCredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubCredentialStore) Roles(_ context.Context, userID string) ([]string, error) {
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return s.roles[userID], nil
}

type stubIssuer struct {
	user  *domain.User
	roles []string
	calls int
}

func (i *stubIssuer) Issue(user *domain.User, roles []string) (string, error) {
	i.calls++
	i.user = user
	i.roles = roles
	return "signed-token", nil
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	issuer := &stubIssuer{}
	svc := NewAuthService(newStubCredentialStore(t), issuer, zerolog.Nop())

	tkn, err := svc.Authenticate(context.Background(), "admin@email.com", "_Password01")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if tkn != "signed-token" {
		t.Fatalf("unexpected token %q", tkn)
	}
	if issuer.user == nil || issuer.user.ID != "1" {
		t.Fatalf("issuer got wrong user: %+v", issuer.user)
	}
	if len(issuer.roles) != 1 || issuer.roles[0] != domain.RoleAdministrator {
		t.Fatalf("issuer got wrong roles: %v", issuer.roles)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin@email.com", "_Password02"},
		{"unknown user", "ghost@email.com", "_Password01"},
		{"empty username", "", "_Password01"},
		{"empty password", "admin@email.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := &stubIssuer{}
			svc := NewAuthService(newStubCredentialStore(t), issuer, zerolog.Nop())

			tkn, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if err != domain.ErrInvalidCredentials {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if tkn != "" {
				t.Fatalf("expected no token, got %q", tkn)
			}
			if issuer.calls != 0 {
				t.Fatalf("issuer should not be called")
			}
		})
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")

	store := newStubCredentialStore(t)
	store.findErr = boom
	svc := NewAuthService(store, &stubIssuer{}, zerolog.Nop())
	if _, err := svc.Authenticate(context.Background(), "admin@email.com", "_Password01"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}

	store = newStubCredentialStore(t)
	store.rolesErr = boom
	svc = NewAuthService(store, &stubIssuer{}, zerolog.Nop())
	if _, err := svc.Authenticate(context.Background(), "admin@email.com", "_Password01"); !errors.Is(err, boom) {
		t.Fatalf("expected roles error, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pass123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("pass123")); err != nil {
		t.Fatalf("hash does not match password: %v", err)
	}
}
