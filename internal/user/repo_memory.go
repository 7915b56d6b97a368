package user

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests. Not intended for
// production use.
type MemoryRepo struct {
	mu      sync.Mutex
	byEmail map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byEmail: map[string]User{}}
}

func (r *MemoryRepo) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := r.byEmail[key]; ok {
		return User{}, ErrEmailTaken
	}
	r.byEmail[key] = u
	return u, nil
}

func (r *MemoryRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *MemoryRepo) SetRefreshToken(ctx context.Context, email, token string) error {
	return r.update(email, func(u *User) { u.RefreshToken = token })
}

func (r *MemoryRepo) SetConfirmed(ctx context.Context, email string) error {
	return r.update(email, func(u *User) { u.Confirmed = true })
}

func (r *MemoryRepo) SetPasswordHash(ctx context.Context, email, hash string) error {
	return r.update(email, func(u *User) {
		u.PasswordHash = hash
		u.RefreshToken = ""
	})
}

func (r *MemoryRepo) SetRole(ctx context.Context, id, role string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, u := range r.byEmail {
		if u.ID == id {
			u.Role = role
			r.byEmail[key] = u
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) SetAvatar(ctx context.Context, email, url string) error {
	return r.update(email, func(u *User) { u.Avatar = url })
}

func (r *MemoryRepo) update(email string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	u, ok := r.byEmail[key]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	r.byEmail[key] = u
	return nil
}
