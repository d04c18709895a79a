// Package user provides storefront account management.
package user

import (
	"context"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
)

var (
	// ErrEmailTaken indicates a signup against an already registered email.
	ErrEmailTaken = apperrors.E(apperrors.KindConflict, "Email already registered")
	// ErrBadCredentials indicates a login with an unknown email/password pair.
	ErrBadCredentials = apperrors.E(apperrors.KindUnauthorized, "Invalid email or password")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User is a registered storefront account.
//
// The password is stored and compared as given. This is the documented
// behavior of the system, not an oversight; see DESIGN.md.
type User struct {
	ID        int64
	FullName  string
	Email     string
	Password  string
	CreatedAt time.Time
}

// SignupInput carries untrusted registration data.
type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// NormalizeSignup trims and validates registration input.
func NormalizeSignup(input SignupInput) (SignupInput, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.FullName == "" {
		return SignupInput{}, apperrors.E(apperrors.KindInvalidInput, "full name is required")
	}
	if !emailPattern.MatchString(input.Email) {
		return SignupInput{}, apperrors.E(apperrors.KindInvalidInput, "a valid email is required")
	}
	if input.Password == "" {
		return SignupInput{}, apperrors.E(apperrors.KindInvalidInput, "password is required")
	}
	return input, nil
}

// New builds a user record from validated signup input.
func New(input SignupInput, now func() time.Time) (User, error) {
	if now == nil {
		now = time.Now
	}
	normalized, err := NormalizeSignup(input)
	if err != nil {
		return User{}, err
	}
	return User{
		FullName:  normalized.FullName,
		Email:     normalized.Email,
		Password:  normalized.Password,
		CreatedAt: now().UTC(),
	}, nil
}

// Storage persists and looks up accounts.
//
// CreateUser returns ErrEmailTaken when the email already exists.
// GetByCredentials returns ErrBadCredentials when no account matches the
// email/password pair exactly.
type Storage interface {
	CreateUser(ctx context.Context, u User) (int64, error)
	GetByCredentials(ctx context.Context, email, password string) (User, error)
}
