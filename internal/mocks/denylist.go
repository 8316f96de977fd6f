package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// MemoryDenylist is an in-memory implementation of auth.TokenDenylist.
type MemoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Duration // token ID -> ttl given at revocation

	// Error overrides for failure-path tests.
	RevokeErr    error
	IsRevokedErr error
}

var _ auth.TokenDenylist = (*MemoryDenylist)(nil)

// NewMemoryDenylist creates an empty in-memory denylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		revoked: make(map[string]time.Duration),
	}
}

// Revoke implements auth.TokenDenylist.
func (d *MemoryDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d.RevokeErr != nil {
		return d.RevokeErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = ttl
	return nil
}

// IsRevoked implements auth.TokenDenylist.
func (d *MemoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.IsRevokedErr != nil {
		return false, d.IsRevokedErr
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}

// TTL returns the ttl recorded for a revoked token ID, for assertions.
func (d *MemoryDenylist) TTL(tokenID string) (time.Duration, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ttl, ok := d.revoked[tokenID]
	return ttl, ok
}

// Len reports how many token IDs have been revoked.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.revoked)
}
