package domain

import "time"

const (
	RoleAdministrator = "Administrator"
	RoleStudent       = "Student"
)

// KnownRoles is the fixed set of roles that may be assigned to a user.
var KnownRoles = []string{RoleAdministrator, RoleStudent}

// User models an account held by the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subject is the value placed in a token's sub claim.
func (u *User) Subject() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// Principal is the authenticated caller as established by a verified token.
type Principal struct {
	UserID    string
	Subject   string
	TokenID   string
	Roles     []string
	ExpiresAt time.Time
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, held := range p.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}
