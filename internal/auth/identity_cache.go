package auth

import (
	"context"
	"time"

	"campusdesk/internal/access"
	"campusdesk/internal/cache"
)

const identityKeyPrefix = "identity:"

// IdentityCacheInterface defines storage for resolved identities.
type IdentityCacheInterface interface {
	Get(ctx context.Context, clerkID string) (access.Identity, bool)
	Put(ctx context.Context, identity access.Identity)
	Invalidate(ctx context.Context, clerkID string)
}

// IdentityCache keeps resolved identities in Redis for a short TTL.
type IdentityCache struct {
	cache *cache.Client
	ttl   time.Duration
}

// Ensure IdentityCache implements IdentityCacheInterface
var _ IdentityCacheInterface = (*IdentityCache)(nil)

// NewIdentityCache creates a new identity cache.
func NewIdentityCache(c *cache.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{cache: c, ttl: ttl}
}

// Get returns a cached identity. Anonymous results are never cached, so a miss is
// reported for them.
func (s *IdentityCache) Get(ctx context.Context, clerkID string) (access.Identity, bool) {
	var identity access.Identity
	if !s.cache.GetJSON(ctx, identityKeyPrefix+clerkID, &identity) {
		return access.Identity{}, false
	}
	if !identity.Resolved() || identity.ClerkID != clerkID {
		return access.Identity{}, false
	}
	return identity, true
}

// Put stores a resolved identity.
func (s *IdentityCache) Put(ctx context.Context, identity access.Identity) {
	if !identity.Resolved() || s.ttl <= 0 {
		return
	}
	s.cache.SetJSON(ctx, identityKeyPrefix+identity.ClerkID, identity, s.ttl)
}

// Invalidate drops the cached identity, if any.
func (s *IdentityCache) Invalidate(ctx context.Context, clerkID string) {
	_ = s.cache.Delete(ctx, identityKeyPrefix+clerkID)
}
