// Package token issues and verifies the HS256 bearer tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// MinSecretLength is the shortest signing key accepted for HS256.
const MinSecretLength = 32

// DefaultTTL is the validity window used when Config.TTL is unset.
const DefaultTTL = 2 * time.Minute

// Config controls token issuance.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// claims is the JWT payload. Roles holds one entry per role the subject has.
type claims struct {
	jwt.RegisteredClaims
	NameID string   `json:"nameid,omitempty"`
	Roles  []string `json:"roles"`
}

// Manager signs and verifies tokens with a single symmetric key.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token: secret must be at least %d bytes", MinSecretLength)
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: []byte(cfg.Secret), issuer: cfg.Issuer, ttl: ttl, now: now}, nil
}

// TTL returns the validity window applied to issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue builds and signs a token for user carrying one role claim per role.
func (m *Manager) Issue(user *domain.User, roles []string) (string, error) {
	now := m.now().UTC().Truncate(time.Second)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.Subject(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		NameID: user.ID,
		Roles:  append([]string{}, roles...),
	}
	if m.issuer != "" {
		c.Audience = jwt.ClaimStrings{m.issuer}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the caller.
func (m *Manager) Verify(raw string) (*domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer), jwt.WithAudience(m.issuer))
	}

	var c claims
	tkn, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	p := &domain.Principal{
		UserID:  c.NameID,
		Subject: c.Subject,
		TokenID: c.ID,
		Roles:   c.Roles,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}
