package server

import (
	"talkshalk/internal/models"
	"talkshalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. A successful signup is signed in
// straight away with a persistent session.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.sessions.Issue(user.ID, true)
	if err != nil {
		return s.respondError(c, err)
	}
	s.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    s.publicUser(user),
	})
}

// Signin handles POST /api/auth/signin. rememberMe selects the persistent
// session lifetime.
func (s *Server) Signin(c *fiber.Ctx) error {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("Email and password are required"))
	}

	user, err := s.identity.VerifyCredentials(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.sessions.Issue(user.ID, req.RememberMe)
	if err != nil {
		return s.respondError(c, err)
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"message": "Signed in successfully",
		"user":    s.publicUser(user),
	})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Authentication required"))
	}
	return c.JSON(fiber.Map{"user": s.publicUser(user)})
}

// Logout handles POST /api/auth/logout. It only clears the cookie: the token
// itself stays valid until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Revoke()
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
