package server

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"
	"unicode"

	"talkshalk/internal/middleware"
	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/service"
	"talkshalk/internal/session"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError logs storage failures before writing the tagged error.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	if code := models.ErrorCode(err); code == models.CodeUnavailable || code == "" {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		return strings.ToLower(strings.Join(splitCamel(prefix), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// setSessionCookie hands the token to the browser with a lifetime matching
// the session.
func (s *Server) setSessionCookie(c *fiber.Ctx, token session.Token) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(token.TTL(time.Now()).Seconds()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// readImage pulls an optional image part out of a multipart request.
// It returns a nil input when the field is absent.
func (s *Server) readImage(c *fiber.Ctx, field string) (*service.UploadImageInput, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return s.readFileHeader(fh)
}

func (s *Server) readFileHeader(fh *multipart.FileHeader) (*service.UploadImageInput, error) {
	if fh.Size > s.images.MaxBytes() {
		return nil, models.NewValidationError("Image exceeds the upload limit")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.images.MaxBytes()+1))
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	return &service.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// Response decoration: stored refs become retrieval URLs.

func (s *Server) decorateAuthor(a *models.AuthorSummary) {
	a.Avatar = s.images.URL(a.Avatar)
}

func (s *Server) decoratePost(p *models.Post) *models.Post {
	p.ImageURL = s.images.URL(p.ImageRef)
	s.decorateAuthor(&p.AuthorSummary)
	for i := range p.CommentList {
		s.decorateAuthor(&p.CommentList[i].Author)
	}
	return p
}

func (s *Server) decoratePosts(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	for _, p := range posts {
		s.decoratePost(p)
	}
	return posts
}

func (s *Server) decorateComment(c *models.Comment) *models.Comment {
	s.decorateAuthor(&c.AuthorSummary)
	for i := range c.Replies {
		s.decorateComment(&c.Replies[i])
	}
	return c
}

func (s *Server) publicUser(u *models.User) models.PublicUser {
	pub := u.Public()
	pub.Avatar = s.images.URL(pub.Avatar)
	return pub
}
