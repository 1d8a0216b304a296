package server

import (
	"strings"

	"talkshalk/internal/middleware"
	"talkshalk/internal/models"
	"talkshalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.content.ListAll(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.decoratePosts(posts))
}

// GetUserPosts handles GET /api/posts/user/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	posts, err := s.content.ListByAuthor(c.UserContext(), userID, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.decoratePosts(posts))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.content.GetPost(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(s.decoratePost(post))
}

// CreatePost handles POST /api/posts. It accepts JSON or a multipart form
// with "content" and an optional "image" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	// Checked before the upload so rejected posts leave no stray blobs.
	if strings.TrimSpace(req.Content) == "" {
		return models.RespondWithError(c, models.NewEmptyContentError())
	}

	var imageRef string
	upload, err := s.readImage(c, "image")
	if err != nil {
		return s.respondError(c, err)
	}
	if upload != nil {
		imageRef, err = s.images.Upload(c.UserContext(), *upload)
		if err != nil {
			return s.respondError(c, err)
		}
	}

	post, err := s.content.CreatePost(c.UserContext(), service.CreatePostInput{
		ActorID:  middleware.UserID(c),
		Content:  req.Content,
		ImageRef: imageRef,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.decoratePost(post))
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.content.ToggleLike(c.UserContext(), middleware.UserID(c), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.content.DeletePost(c.UserContext(), middleware.UserID(c), postID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
