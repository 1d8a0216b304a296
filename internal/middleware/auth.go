package middleware

import (
	"context"
	"strings"

	"talkshalk/internal/models"
	"talkshalk/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

// TokenResolver maps a session token to the user it was issued for.
type TokenResolver interface {
	Resolve(token string) (uint, error)
}

// UserLookup confirms that a resolved user still exists.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// TokensFromRequest returns the session tokens presented with the request:
// the cookie first, then an "Authorization: Bearer" header.
func TokensFromRequest(c *fiber.Ctx) []string {
	var tokens []string
	if token := c.Cookies(SessionCookie); token != "" {
		tokens = append(tokens, token)
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// resolveRequest returns the user of the first presented token that
// resolves. A stale cookie therefore does not mask a valid bearer token.
func resolveRequest(tokens TokenResolver, c *fiber.Ctx) (uint, error) {
	candidates := TokensFromRequest(c)
	if len(candidates) == 0 {
		return tokens.Resolve("")
	}
	var lastErr error
	for _, token := range candidates {
		userID, err := tokens.Resolve(token)
		if err == nil {
			return userID, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// AuthRequired rejects requests without a valid session for an existing
// user. On success the user ID is stored in c.Locals("userID") and the user
// in c.Locals("user").
func AuthRequired(tokens TokenResolver, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := resolveRequest(tokens, c)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		ctx := observability.WithUserID(c.UserContext(), userID)
		if users != nil {
			user, err := users.GetByID(ctx, userID)
			if err != nil {
				if models.IsCode(err, models.CodeNotFound) {
					observability.AuthFailures.WithLabelValues("unknown_user").Inc()
					return models.RespondWithError(c, models.NewUnauthenticatedError("Not authorized, user not found"))
				}
				return models.RespondWithError(c, err)
			}
			c.Locals("user", user)
		}

		c.Locals("userID", userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// OptionalAuth identifies the viewer when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(tokens TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(TokensFromRequest(c)) == 0 {
			return c.Next()
		}
		if userID, err := resolveRequest(tokens, c); err == nil {
			c.Locals("userID", userID)
			c.SetUserContext(observability.WithUserID(c.UserContext(), userID))
		}
		return c.Next()
	}
}

// UserID returns the authenticated user ID, or zero for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}
