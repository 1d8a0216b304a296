package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"empty content", NewEmptyContentError(), fiber.StatusBadRequest},
		{"duplicate email", NewDuplicateEmailError(), fiber.StatusConflict},
		{"duplicate username", NewDuplicateUsernameError(), fiber.StatusConflict},
		{"invalid credentials", NewInvalidCredentialsError(), fiber.StatusUnauthorized},
		{"unauthenticated", NewUnauthenticatedError("no"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), fiber.StatusForbidden},
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"unavailable", NewUnavailableError(errors.New("io")), fiber.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("ctx: %w", NewForbiddenError("no")), fiber.StatusForbidden},
		{"untagged", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestUnavailableErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUnavailableError(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeUnavailable))
}

func TestRespondWithError_HidesUntaggedDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/tagged", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewNotFoundError("Post", 7))
	})
	app.Get("/untagged", func(c *fiber.Ctx) error {
		return RespondWithError(c, errors.New("pq: secret table detail"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/tagged", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, CodeNotFound, body.Code)
	assert.Equal(t, "Post with ID 7 not found", body.Error)

	resp, err = app.Test(httptest.NewRequest("GET", "/untagged", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret table")
}

func TestUserPublicOmitsDigest(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Email: "a@example.com", Password: "$2a$digest"}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$2a$digest")

	raw, err = json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "digest")
	assert.Contains(t, string(raw), `"username":"alice"`)
}
