package audit

import "time"

// EventType categorizes an auth event. Keep these stable; dashboards and
// retention policies key off them.
type EventType string

const (
	EventSignup         EventType = "signup"
	EventLogin          EventType = "login"
	EventLogout         EventType = "logout"
	EventTokenRefresh   EventType = "token_refresh"
	EventEmailConfirmed EventType = "email_confirmed"
	EventPasswordReset  EventType = "password_reset"
	EventRoleChange     EventType = "role_change"
)

// Event is an append-only record of a security-relevant action.
// Email is the affected account; ActorEmail is who performed the action
// when it differs (role changes by an admin).
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Email      string    `json:"email"`
	ActorEmail string    `json:"actor_email,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
