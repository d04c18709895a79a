// Package session keeps the storefront's signed-in identity in local storage.
package session

import (
	"context"
	"fmt"
	"strconv"
)

// Storage keys for the persisted identity. Each field is stored separately
// so a partial write still leaves the token usable.
const (
	keyToken = "user_token"
	keyID    = "user_id"
	keyName  = "user_name"
	keyEmail = "user_email"
)

// KV is the slice of local storage the session needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Identity is the signed-in account as the storefront sees it.
type Identity struct {
	Token  string
	UserID int64
	Name   string
	Email  string
}

// Manager reads and writes the persisted identity.
type Manager struct {
	kv KV
}

// NewManager wires the session to its backing storage.
func NewManager(kv KV) *Manager {
	return &Manager{kv: kv}
}

// Current returns the stored identity. The session exists when a token is
// present; the other fields are best effort.
func (m *Manager) Current(ctx context.Context) (Identity, bool, error) {
	if m == nil || m.kv == nil {
		return Identity{}, false, fmt.Errorf("session storage is not configured")
	}

	token, found, err := m.kv.Get(ctx, keyToken)
	if err != nil {
		return Identity{}, false, fmt.Errorf("read session token: %w", err)
	}
	if !found || token == "" {
		return Identity{}, false, nil
	}

	identity := Identity{Token: token}
	if value, ok, err := m.kv.Get(ctx, keyID); err != nil {
		return Identity{}, false, fmt.Errorf("read session user id: %w", err)
	} else if ok {
		// A corrupt id leaves the session usable as a guest-with-token.
		identity.UserID, _ = strconv.ParseInt(value, 10, 64)
	}
	if value, ok, err := m.kv.Get(ctx, keyName); err != nil {
		return Identity{}, false, fmt.Errorf("read session name: %w", err)
	} else if ok {
		identity.Name = value
	}
	if value, ok, err := m.kv.Get(ctx, keyEmail); err != nil {
		return Identity{}, false, fmt.Errorf("read session email: %w", err)
	} else if ok {
		identity.Email = value
	}
	return identity, true, nil
}

// SignIn persists the identity returned by a successful login or signup.
func (m *Manager) SignIn(ctx context.Context, identity Identity) error {
	if m == nil || m.kv == nil {
		return fmt.Errorf("session storage is not configured")
	}
	if identity.Token == "" {
		return fmt.Errorf("session token is required")
	}

	if err := m.kv.Set(ctx, keyToken, identity.Token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	if err := m.kv.Set(ctx, keyID, strconv.FormatInt(identity.UserID, 10)); err != nil {
		return fmt.Errorf("store session user id: %w", err)
	}
	if err := m.kv.Set(ctx, keyName, identity.Name); err != nil {
		return fmt.Errorf("store session name: %w", err)
	}
	if err := m.kv.Set(ctx, keyEmail, identity.Email); err != nil {
		return fmt.Errorf("store session email: %w", err)
	}
	return nil
}

// SignOut discards the stored identity. The cart is untouched.
func (m *Manager) SignOut(ctx context.Context) error {
	if m == nil || m.kv == nil {
		return fmt.Errorf("session storage is not configured")
	}

	for _, key := range []string{keyToken, keyID, keyName, keyEmail} {
		if err := m.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear session key %s: %w", key, err)
		}
	}
	return nil
}
