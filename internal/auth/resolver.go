package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"campusdesk/internal/access"
	"campusdesk/internal/model"
	"campusdesk/internal/repository"
)

// Resolver maps an authenticated external id to the caller's directory identity.
type Resolver struct {
	repo  repository.DirectoryRepository
	cache IdentityCacheInterface
}

// NewResolver creates a new identity resolver.
func NewResolver(repo repository.DirectoryRepository, cache IdentityCacheInterface) *Resolver {
	return &Resolver{repo: repo, cache: cache}
}

// Resolve returns the caller's identity. A subject with no profile resolves to an
// anonymous identity, not an error.
func (r *Resolver) Resolve(ctx context.Context, clerkID string) (access.Identity, error) {
	if identity, ok := r.cache.Get(ctx, clerkID); ok {
		return identity, nil
	}

	identity, err := r.lookup(ctx, clerkID)
	if err != nil {
		return access.Identity{}, err
	}
	r.cache.Put(ctx, identity)
	return identity, nil
}

// Invalidate forgets any cached resolution for clerkID.
func (r *Resolver) Invalidate(ctx context.Context, clerkID string) {
	r.cache.Invalidate(ctx, clerkID)
}

func (r *Resolver) lookup(ctx context.Context, clerkID string) (access.Identity, error) {
	mapping, err := r.repo.FindIdentity(ctx, clerkID)
	switch {
	case err == nil:
		if mapping.Kind == model.IdentityKindStaff {
			return r.staff(ctx, clerkID)
		}
		return r.user(ctx, clerkID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Rows written before the identity mapping existed: probe both directories.
		identity, err := r.user(ctx, clerkID)
		if err != nil || identity.Resolved() {
			return identity, err
		}
		return r.staff(ctx, clerkID)
	default:
		return access.Identity{}, fmt.Errorf("find identity: %w", err)
	}
}

func (r *Resolver) user(ctx context.Context, clerkID string) (access.Identity, error) {
	user, err := r.repo.FindUserByClerkID(ctx, clerkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Anonymous(clerkID), nil
	}
	if err != nil {
		return access.Identity{}, fmt.Errorf("find user: %w", err)
	}
	return access.ForUser(user), nil
}

func (r *Resolver) staff(ctx context.Context, clerkID string) (access.Identity, error) {
	staff, err := r.repo.FindStaffByClerkID(ctx, clerkID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Anonymous(clerkID), nil
	}
	if err != nil {
		return access.Identity{}, fmt.Errorf("find staff: %w", err)
	}
	return access.ForStaff(staff), nil
}
