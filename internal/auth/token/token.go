// Package token mints and verifies bearer tokens for storefront sessions.
//
// Clients treat the token as an opaque string; only this package and the
// server know it is an HS256 JWT.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
)

const issuer = "feastly"

// Config defines how session tokens are signed and verified.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Claims captures the validated identity carried by a session token.
type Claims struct {
	UserID int64
	Name   string
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Mint signs a session token for the given user.
func Mint(cfg Config, userID int64, name string) (string, error) {
	if len(cfg.Secret) == 0 {
		return "", fmt.Errorf("token secret is not configured")
	}
	if userID <= 0 {
		return "", fmt.Errorf("user id is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	issuedAt := now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Name: name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns its identity claims.
func Verify(cfg Config, value string) (Claims, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Claims{}, apperrors.E(apperrors.KindUnauthorized, "session token is required")
	}
	if len(cfg.Secret) == 0 {
		return Claims{}, fmt.Errorf("token secret is not configured")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(value, &parsed, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now().UTC() }),
	)
	if err != nil {
		return Claims{}, apperrors.E(apperrors.KindUnauthorized, "session token is invalid or expired")
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, apperrors.E(apperrors.KindUnauthorized, "session token subject is invalid")
	}
	return Claims{UserID: userID, Name: parsed.Name}, nil
}
