package auth

import (
	"context"
	"time"
)

// TokenDenylist records revoked token IDs (jti claims) so logout can
// invalidate tokens before their natural expiry. Entries only need to
// outlive the token they revoke, so implementations may expire them.
type TokenDenylist interface {
	// Revoke marks the token ID as revoked for at least ttl.
	// Revoking an already-revoked ID is a no-op.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether the token ID has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
