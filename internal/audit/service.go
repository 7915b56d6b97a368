package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for auth events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records auth events. Callers should treat audit logging as
// best-effort: a failed append never blocks the flow that produced it.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if e.Email == "" || e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record is the fire-and-forget convenience wrapper used by handlers.
func (s *Service) Record(ctx context.Context, t EventType, email, actor, ip, message string) {
	_ = s.Append(ctx, Event{
		Type:       t,
		Email:      email,
		ActorEmail: actor,
		IP:         ip,
		Message:    message,
	})
}
