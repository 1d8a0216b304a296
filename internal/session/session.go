// Package session issues and resolves signed, stateless session tokens.
//
// Tokens are HS256 JWTs bound to a user ID and an expiry. There is no
// server-side revocation list: a token stays valid until it expires, even
// after the holder logs out.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTTL    = 7 * 24 * time.Hour
	PersistentTTL = 30 * 24 * time.Hour
)

// Config is the process-wide signing configuration, loaded once at startup.
type Config struct {
	Secret        []byte
	Issuer        string
	Audience      string
	DefaultTTL    time.Duration
	PersistentTTL time.Duration
}

// Token is a signed session token and the instant it stops being accepted.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TTL returns the remaining lifetime of the token relative to now.
func (t Token) TTL(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

// Authority signs and verifies session tokens.
type Authority struct {
	cfg Config
	now func() time.Time
}

// NewAuthority validates cfg and returns an Authority. Zero TTLs fall back to 7 and 30 days.
func NewAuthority(cfg Config) (*Authority, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.PersistentTTL <= 0 {
		cfg.PersistentTTL = PersistentTTL
	}
	return &Authority{cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of a that reads time from now.
func (a *Authority) WithClock(now func() time.Time) *Authority {
	cp := *a
	cp.now = now
	return &cp
}

// Issue signs a token for userID. persistent selects the longer TTL.
func (a *Authority) Issue(userID uint, persistent bool) (Token, error) {
	if userID == 0 {
		return Token{}, models.NewValidationError("cannot issue a session for an empty user")
	}

	ttl := a.cfg.DefaultTTL
	if persistent {
		ttl = a.cfg.PersistentTTL
	}

	now := a.now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    a.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	if a.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{a.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}

	observability.RecordSessionIssued(persistent)
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Resolve verifies tokenString and returns the user it is bound to.
func (a *Authority) Resolve(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, unauthenticated("missing", "Authentication required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (interface{}, error) {
		return a.cfg.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, unauthenticated("expired", "Session expired")
		}
		return 0, unauthenticated("invalid", "Invalid session token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, unauthenticated("subject", "Invalid session token")
	}
	return uint(userID), nil
}

// Revoke is a no-op: sessions are stateless, so the caller must discard its token.
func (a *Authority) Revoke() {}

func unauthenticated(reason, message string) error {
	observability.AuthFailures.WithLabelValues("session_" + reason).Inc()
	return models.NewUnauthenticatedError(message)
}
