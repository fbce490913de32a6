package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusloc/locations-api/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: testSecret, Issuer: "campus-locations", TTL: 2 * time.Minute, Now: clock.Now})
	require.NoError(t, err)
	return m
}

func adminUser() *domain.User {
	return &domain.User{ID: "42", Username: "admin@email.com", Email: "admin@email.com"}
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: "short"})
	require.Error(t, err)
}

func TestNewManager_DefaultsTTL(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, m.TTL())
}

func TestIssueVerify_RoundTripsClaims(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)

	raw, err := m.Issue(adminUser(), []string{domain.RoleAdministrator, domain.RoleStudent})
	require.NoError(t, err)

	p, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "admin@email.com", p.Subject)
	assert.Equal(t, "42", p.UserID)
	assert.NotEmpty(t, p.TokenID)
	assert.Equal(t, []string{domain.RoleAdministrator, domain.RoleStudent}, p.Roles)
	assert.Equal(t, clock.t.Add(2*time.Minute), p.ExpiresAt.UTC())
}

func TestIssue_FreshTokenIDPerIssuance(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(t, clock)

	a, err := m.Issue(adminUser(), nil)
	require.NoError(t, err)
	b, err := m.Issue(adminUser(), nil)
	require.NoError(t, err)

	pa, err := m.Verify(a)
	require.NoError(t, err)
	pb, err := m.Verify(b)
	require.NoError(t, err)
	assert.NotEqual(t, pa.TokenID, pb.TokenID)
	assert.Empty(t, pa.Roles)
}

func TestVerify_ExpiredToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)

	raw, err := m.Issue(adminUser(), []string{domain.RoleAdministrator})
	require.NoError(t, err)

	clock.t = clock.t.Add(2*time.Minute + time.Second)
	_, err = m.Verify(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired), "got %v", err)
}

func TestVerify_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(t, clock)

	raw, err := m.Issue(adminUser(), []string{domain.RoleStudent})
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[5] == 'A' {
		payload[5] = 'B'
	} else {
		payload[5] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = m.Verify(tampered)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "got %v", err)
}

func TestVerify_WrongKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other, err := NewManager(Config{Secret: strings.Repeat("x", 32), Issuer: "campus-locations", Now: clock.Now})
	require.NoError(t, err)
	raw, err := other.Issue(adminUser(), []string{domain.RoleAdministrator})
	require.NoError(t, err)

	_, err = newTestManager(t, clock).Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "got %v", err)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(t, clock)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   "admin@email.com",
		"roles": []string{domain.RoleAdministrator},
		"exp":   clock.t.Add(time.Minute).Unix(),
		"iss":   "campus-locations",
		"aud":   "campus-locations",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid), "got %v", err)
}

func TestVerify_Garbage(t *testing.T) {
	m := newTestManager(t, &fakeClock{t: time.Now()})
	_, err := m.Verify("not-a-token")
	assert.True(t, errors.Is(err, domain.ErrTokenInvalid))
}
