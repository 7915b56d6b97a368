package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contacts-platform/internal/auth"
	"contacts-platform/internal/mailer"
	"contacts-platform/internal/rbac"
	"contacts-platform/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrAlreadyConfirmed = errors.New("email already confirmed")
	ErrInvalidRole      = errors.New("invalid role")
)

// Service implements the account flows around the token core: signup,
// email confirmation, password reset, role administration.
//
// Outbound email is fire-and-forget: issuing the token and handing the
// dispatcher a fully-formed link is this service's whole responsibility.
// Delivery failures are logged and never retried here.
type Service struct {
	repo     Repository
	cache    *Cache
	issuer   *auth.Issuer
	verifier *auth.Verifier
	hasher   auth.PasswordHasher
	mail     mailer.Dispatcher
	baseURL  string

	clock func() time.Time
}

func NewService(repo Repository, cache *Cache, issuer *auth.Issuer, verifier *auth.Verifier, hasher auth.PasswordHasher, mail mailer.Dispatcher, baseURL string) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		issuer:   issuer,
		verifier: verifier,
		hasher:   hasher,
		mail:     mail,
		baseURL:  strings.TrimRight(baseURL, "/"),
		clock:    time.Now,
	}
}

// Signup creates an unconfirmed account and dispatches the confirmation
// link. Duplicate emails fail with ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, username, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, errors.New("email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	u, err := s.repo.Create(ctx, User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: hash,
		Role:         rbac.RoleUser,
		Confirmed:    false,
		CreatedAt:    s.clock().UTC(),
	})
	if err != nil {
		return User{}, err
	}

	s.sendConfirmation(ctx, u)
	return u, nil
}

// ConfirmEmail flips the confirmed flag via a valid email_verify token.
// A token issued for any other purpose is rejected with ErrInvalidScope.
// Returns ErrAlreadyConfirmed when the flag was already set; the flip
// happens exactly once.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (string, error) {
	claims, err := s.verifier.Verify(token, auth.ScopeEmailVerify, s.clock())
	if err != nil {
		return "", err
	}

	u, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	if u.Confirmed {
		return u.Email, ErrAlreadyConfirmed
	}

	if err := s.repo.SetConfirmed(ctx, u.Email); err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, u.Email)
	return u.Email, nil
}

// ResendConfirmation re-issues the confirmation link. Unknown emails
// succeed silently so the endpoint cannot be used for account enumeration.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Confirmed {
		return ErrAlreadyConfirmed
	}

	s.sendConfirmation(ctx, u)
	return nil
}

// RequestPasswordReset issues a reset_password token and dispatches the
// reset link. Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.issuer.ResetPasswordToken(u.Email)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/api/auth/reset_password/%s", s.baseURL, token)
	s.dispatch(ctx, mailer.ResetMessage(u.Email, displayName(u), link))
	return nil
}

// ResetPassword verifies a reset_password-scoped token and replaces the
// stored hash. Tokens issued for email verification (or as access/refresh
// credentials) are unconditionally rejected. Returns the affected email.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if newPassword == "" {
		return "", errors.New("new password is required")
	}

	claims, err := s.verifier.Verify(token, auth.ScopeResetPassword, s.clock())
	if err != nil {
		return "", err
	}

	u, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetPasswordHash(ctx, u.Email, hash); err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, u.Email)
	return u.Email, nil
}

// ChangeRole is the admin-only role mutation.
func (s *Service) ChangeRole(ctx context.Context, userID, role string) (User, error) {
	if !rbac.IsValid(role) {
		return User{}, ErrInvalidRole
	}
	u, err := s.repo.SetRole(ctx, userID, role)
	if err != nil {
		return User{}, err
	}
	s.cache.Invalidate(ctx, u.Email)
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// UpdateAvatar persists the stored avatar URL for the account.
func (s *Service) UpdateAvatar(ctx context.Context, email, url string) error {
	if err := s.repo.SetAvatar(ctx, email, url); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, email)
	return nil
}

func (s *Service) sendConfirmation(ctx context.Context, u User) {
	token, err := s.issuer.EmailVerifyToken(u.Email)
	if err != nil {
		logger.From(ctx).Error("confirmation token issue failed", "err", err)
		return
	}
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.baseURL, token)
	s.dispatch(ctx, mailer.ConfirmationMessage(u.Email, displayName(u), link))
}

// dispatch hands the message to the mailer on a detached context so slow
// SMTP cannot hold the request open.
func (s *Service) dispatch(ctx context.Context, msg mailer.Message) {
	log := logger.From(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mail.Dispatch(sendCtx, msg); err != nil {
			log.Error("mail dispatch failed", "to", msg.To, "template", msg.Template, "err", err)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayName(u User) string {
	if u.Username != "" {
		return u.Username
	}
	return "user"
}
