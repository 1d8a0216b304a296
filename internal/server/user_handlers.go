package server

import (
	"talkshalk/internal/middleware"
	"talkshalk/internal/models"
	"talkshalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

type userResponse struct {
	models.PublicUser
	Posts []uint `json:"posts"`
}

func (s *Server) userResponse(u *models.User) userResponse {
	posts := u.PostIDs
	if posts == nil {
		posts = []uint{}
	}
	return userResponse{PublicUser: s.publicUser(u), Posts: posts}
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.identity.GetByID(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// UpdateMe handles PUT /api/users/me
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req struct {
		Bio *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: middleware.UserID(c),
		Bio:    req.Bio,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// UploadAvatar handles POST /api/users/me/avatar with a multipart "avatar" file.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	upload, err := s.readImage(c, "avatar")
	if err != nil {
		return s.respondError(c, err)
	}
	if upload == nil {
		return models.RespondWithError(c, models.NewValidationError("Avatar file is required"))
	}

	ref, err := s.images.Upload(c.UserContext(), *upload)
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.identity.UpdateAvatar(c.UserContext(), middleware.UserID(c), ref)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.userResponse(user))
}
