package contact

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests. Not intended for
// production use.
type MemoryRepo struct {
	mu       sync.Mutex
	contacts map[string]Contact // keyed by contact ID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{contacts: map[string]Contact{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c Contact) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.contacts {
		if e.UserID == c.UserID && strings.EqualFold(e.Email, c.Email) {
			return Contact{}, ErrDuplicateEmail
		}
	}
	r.contacts[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, offset, limit int) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.ownedLocked(userID)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, id string, upd Update) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return Contact{}, ErrNotFound
	}
	if upd.FirstName != nil {
		c.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		c.LastName = *upd.LastName
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Birthday != nil {
		c.Birthday = *upd.Birthday
	}
	if upd.Extra != nil {
		c.Extra = *upd.Extra
	}
	r.contacts[id] = c
	return c, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *MemoryRepo) Search(ctx context.Context, userID, q string) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(q)
	var out []Contact
	for _, c := range r.ownedLocked(userID) {
		if strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fromMD := from.Format("01-02")
	toMD := from.AddDate(0, 0, days).Format("01-02")

	var out []Contact
	for _, c := range r.ownedLocked(userID) {
		md := c.Birthday.Format("01-02")
		if fromMD <= toMD {
			if md >= fromMD && md <= toMD {
				out = append(out, c)
			}
		} else if md >= fromMD || md <= toMD {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Birthday.Format("01-02") < out[j].Birthday.Format("01-02")
	})
	return out, nil
}

func (r *MemoryRepo) ownedLocked(userID string) []Contact {
	var out []Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out
}
