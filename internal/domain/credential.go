package domain

import (
	"context"
	"errors"
	"time"
)

// Tier names a credential storage scope.
type Tier string

const (
	// TierDurable survives restarts.
	TierDurable Tier = "durable"
	// TierSession ends with the current session.
	TierSession Tier = "session"
)

// Tiers lists every tier in restore precedence order.
var Tiers = []Tier{TierDurable, TierSession}

var ErrNoCredential = errors.New("no credential stored")

// User is the profile returned alongside a token.
type User struct {
	ID       FlexID `json:"id,omitempty"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Credential is an authenticated session: bearer token, profile and an
// optional absolute expiry (set only for remembered logins).
type Credential struct {
	Token     string
	User      User
	ExpiresAt *time.Time
}

// Expired reports whether the credential carries an expiry that is not after now.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// CredentialRepository stores at most one credential per tier.
type CredentialRepository interface {
	// Get returns ErrNoCredential when the tier is empty.
	Get(ctx context.Context, tier Tier) (*Credential, error)
	Set(ctx context.Context, tier Tier, cred *Credential) error
	// Clear is a no-op on an empty tier.
	Clear(ctx context.Context, tier Tier) error
}
