package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")

const (
	defaultListLimit = 10
	maxListLimit     = 100

	defaultBirthdayWindow = 7
	maxBirthdayWindow     = 366
)

// Service implements per-user contact CRUD plus the two trivial queries
// (substring search, upcoming birthdays). All operations are scoped to the
// owning user; there is no cross-user access path.
type Service struct {
	repo Repository

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, userID string, c Contact) (Contact, error) {
	if userID == "" {
		return Contact{}, ErrInvalidArgument
	}
	c.UserID = userID
	c.ID = uuid.NewString()
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)

	if c.FirstName == "" || c.LastName == "" || c.Email == "" || c.Phone == "" || c.Birthday.IsZero() {
		return Contact{}, ErrInvalidArgument
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Contact, error) {
	if userID == "" || id == "" {
		return Contact{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, offset, limit int) ([]Contact, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, userID, offset, limit)
}

func (s *Service) Update(ctx context.Context, userID, id string, upd Update) (Contact, error) {
	if userID == "" || id == "" {
		return Contact{}, ErrInvalidArgument
	}
	if upd.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*upd.Email))
		if e == "" {
			return Contact{}, ErrInvalidArgument
		}
		upd.Email = &e
	}
	return s.repo.Update(ctx, userID, id, upd)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) Search(ctx context.Context, userID, q string) ([]Contact, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.Search(ctx, userID, q)
}

func (s *Service) UpcomingBirthdays(ctx context.Context, userID string, days int) ([]Contact, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if days <= 0 {
		days = defaultBirthdayWindow
	}
	if days > maxBirthdayWindow {
		days = maxBirthdayWindow
	}
	return s.repo.UpcomingBirthdays(ctx, userID, s.clock().UTC(), days)
}
