package user

import (
	"context"
	"errors"

	"contacts-platform/internal/auth"
)

// IdentityStore adapts Repository to the session manager's contract. It
// reads through to storage on every call so credential material and the
// refresh slot are always current.
type IdentityStore struct {
	repo Repository
}

func NewIdentityStore(repo Repository) *IdentityStore {
	return &IdentityStore{repo: repo}
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Identity{}, auth.ErrUnknownIdentity
		}
		return auth.Identity{}, err
	}
	return toIdentity(u), nil
}

func (s *IdentityStore) SetRefreshToken(ctx context.Context, email, token string) error {
	err := s.repo.SetRefreshToken(ctx, email, token)
	if errors.Is(err, ErrNotFound) {
		return auth.ErrUnknownIdentity
	}
	return err
}

// CachedIdentityStore fronts an IdentityStore with the redis user cache.
// Intended for the access-token middleware's per-request identity lookup.
//
// Cached records omit credential material, so this store must NOT back
// login or refresh; those go through the plain IdentityStore.
type CachedIdentityStore struct {
	inner *IdentityStore
	cache *Cache
}

func NewCachedIdentityStore(inner *IdentityStore, cache *Cache) *CachedIdentityStore {
	return &CachedIdentityStore{inner: inner, cache: cache}
}

func (s *CachedIdentityStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	if u, ok := s.cache.Get(ctx, email); ok {
		return toIdentity(u), nil
	}

	u, err := s.inner.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Identity{}, auth.ErrUnknownIdentity
		}
		return auth.Identity{}, err
	}
	s.cache.Set(ctx, u)
	return toIdentity(u), nil
}

func (s *CachedIdentityStore) SetRefreshToken(ctx context.Context, email, token string) error {
	return s.inner.SetRefreshToken(ctx, email, token)
}

func toIdentity(u User) auth.Identity {
	return auth.Identity{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Confirmed:    u.Confirmed,
		RefreshToken: u.RefreshToken,
		Avatar:       u.Avatar,
	}
}
