// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"talkshalk/internal/config"
	"talkshalk/internal/credential"
	"talkshalk/internal/middleware"
	"talkshalk/internal/observability"
	"talkshalk/internal/repository"
	"talkshalk/internal/service"
	"talkshalk/internal/session"
	"talkshalk/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	blobs          storage.BlobStore
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Authority
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	identity       *service.IdentityService
	content        *service.ContentService
	threads        *service.ThreadService
	images         *service.ImageService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil when the cache is unavailable.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.BlobStore) (*Server, error) {
	sessions, err := session.NewAuthority(cfg.SessionConfig())
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics("talkshalk-api"),
		sessions:       sessions,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
	}
	server.identity = service.NewIdentityService(userRepo, postRepo, credential.NewBcrypt(cfg.BcryptCost))
	server.content = service.NewContentService(postRepo, userRepo)
	server.threads = service.NewThreadService(commentRepo, postRepo)
	server.images = service.NewImageService(blobs, cfg.StorageMaxUploadMB)

	return server, nil
}

// NewApp builds a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "TalkShalk API",
		// Multipart overhead on top of the largest accepted image.
		BodyLimit: int(s.images.MaxBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return s.respondError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded images are fetched cross-origin by the frontend.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if disk, ok := s.blobs.(*storage.DiskStore); ok && strings.HasPrefix(disk.BaseURL(), "/") {
		app.Static(disk.BaseURL(), disk.Dir())
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.sessions, s.userRepo)
	optionalAuth := middleware.OptionalAuth(s.sessions)

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/signin", s.Signin)
	auth.Get("/me", authRequired, s.Me)
	auth.Post("/logout", s.Logout)

	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetPosts)
	posts.Get("/user/:userId", optionalAuth, s.GetUserPosts)
	posts.Get("/:id", optionalAuth, s.GetPost)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Post("/:id/like", authRequired, s.ToggleLike)
	posts.Delete("/:id", authRequired, s.DeletePost)

	comments := api.Group("/comments")
	comments.Post("/", authRequired, s.CreateComment)
	comments.Get("/post/:postId", s.GetPostComments)
	comments.Delete("/:id", authRequired, s.DeleteComment)

	users := api.Group("/users")
	users.Put("/me", authRequired, s.UpdateMe)
	users.Post("/me/avatar", authRequired, s.UploadAvatar)
	users.Get("/:id", s.GetUser)
}

func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs the cache, so its absence degrades but does not fail readiness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases the server's database and cache connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			observability.Logger.WarnContext(ctx, "failed to close redis", slog.String("error", err.Error()))
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
