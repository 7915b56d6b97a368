package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 5 * time.Minute

// cachedUser is the subset of the record safe to place in a shared cache.
// Credential material (password hash, refresh token) is never cached; flows
// that need it must read through to the repository.
type cachedUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Confirmed bool      `json:"confirmed"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache is a redis-backed read cache for user records, keyed user:<email>.
// Best-effort: a cache failure falls back to the repository, never fails
// the request.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, email string) (User, bool) {
	if c == nil || c.rdb == nil {
		return User{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(email)).Result()
	if err != nil {
		return User{}, false
	}
	var cu cachedUser
	if err := json.Unmarshal([]byte(raw), &cu); err != nil {
		return User{}, false
	}
	return User{
		ID:        cu.ID,
		Username:  cu.Username,
		Email:     cu.Email,
		Role:      cu.Role,
		Confirmed: cu.Confirmed,
		Avatar:    cu.Avatar,
		CreatedAt: cu.CreatedAt,
	}, true
}

func (c *Cache) Set(ctx context.Context, u User) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(cachedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Confirmed: u.Confirmed,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, cacheKey(u.Email), raw, cacheTTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, email string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, cacheKey(email)).Err()
}

func cacheKey(email string) string {
	return fmt.Sprintf("user:%s", email)
}
