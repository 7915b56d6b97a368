package contact

import "time"

// Contact is a user-owned address book entry. Tenancy invariant: every
// query is scoped by UserID; no operation may cross user boundaries.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday"`
	Extra     string    `json:"extra,omitempty"`
}

// Update carries a partial contact mutation. Nil fields are left unchanged.
type Update struct {
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Extra     *string    `json:"extra,omitempty"`
}
