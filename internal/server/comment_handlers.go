package server

import (
	"talkshalk/internal/middleware"
	"talkshalk/internal/models"
	"talkshalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comments. parentCommentId turns the
// comment into a reply.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID          uint   `json:"postId"`
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parentCommentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, models.NewValidationError("postId is required"))
	}
	if req.ParentCommentID != nil && *req.ParentCommentID == 0 {
		req.ParentCommentID = nil
	}

	comment, err := s.threads.AddComment(c.UserContext(), service.AddCommentInput{
		ActorID:         middleware.UserID(c),
		PostID:          req.PostID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.decorateComment(comment))
}

// GetPostComments handles GET /api/comments/post/:postId
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.threads.ListForPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	for _, comment := range comments {
		s.decorateComment(comment)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.threads.DeleteComment(c.UserContext(), middleware.UserID(c), commentID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
