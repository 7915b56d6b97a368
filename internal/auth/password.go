package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps the adaptive, salted one-way hash used for stored
// credentials. The bcrypt output is self-describing (algorithm, cost and
// salt are embedded), so historical hashes stay verifiable if the cost is
// raised later.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() PasswordHasher {
	return PasswordHasher{cost: 12}
}

// Hash derives a one-way hash with a fresh per-hash salt. The plaintext is
// never stored, logged or returned.
func (h PasswordHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify recomputes the hash under the stored salt/cost parameters and
// compares in constant time.
func (h PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
