// Package seed fills a database with demo users, posts, comments and likes.
// Everything goes through the services so seeded data obeys the same rules
// as data created over the API. Intended for development and tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"talkshalk/internal/credential"
	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/repository"
	"talkshalk/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user signs in with.
const DemoPassword = "password123"

// Options sizes a seeding run. Zero values fall back to DefaultOptions.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// RandSeed makes a run reproducible; 0 picks a random seed.
	RandSeed int64
}

// DefaultOptions is a small, browsable data set.
var DefaultOptions = Options{Users: 10, PostsPerUser: 3, CommentsPerPost: 2}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seeder drives the services with generated content.
type Seeder struct {
	db       *gorm.DB
	identity *service.IdentityService
	content  *service.ContentService
	threads  *service.ThreadService
}

// NewSeeder wires a Seeder onto db.
func NewSeeder(db *gorm.DB, hasher credential.Hasher) *Seeder {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	return &Seeder{
		db:       db,
		identity: service.NewIdentityService(userRepo, postRepo, hasher),
		content:  service.NewContentService(postRepo, userRepo),
		threads:  service.NewThreadService(commentRepo, postRepo),
	}
}

// ClearAll hard-deletes every row the application owns.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for _, table := range []interface{}{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
		if err := tx.Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// Run creates opts.Users users, gives each PostsPerUser posts, then has
// random users comment on, reply to and like those posts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users <= 0 {
		opts.Users = DefaultOptions.Users
	}
	if opts.PostsPerUser < 0 {
		opts.PostsPerUser = 0
	}
	if opts.CommentsPerPost < 0 {
		opts.CommentsPerPost = 0
	}
	faker := gofakeit.New(opts.RandSeed)
	summary := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := s.createUser(ctx, faker, i)
		if err != nil {
			return summary, err
		}
		users = append(users, u)
		summary.Users++
	}

	for _, author := range users {
		for j := 0; j < opts.PostsPerUser; j++ {
			post, err := s.content.CreatePost(ctx, service.CreatePostInput{
				ActorID: author.ID,
				Content: faker.Paragraph(1, 3, 10, " "),
			})
			if err != nil {
				return summary, fmt.Errorf("seed post: %w", err)
			}
			summary.Posts++

			if err := s.engage(ctx, faker, users, post.ID, opts.CommentsPerPost, summary); err != nil {
				return summary, err
			}
		}
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("likes", summary.Likes),
	)
	return summary, nil
}

// createUser retries a few times since generated names can collide.
func (s *Seeder) createUser(ctx context.Context, faker *gofakeit.Faker, n int) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		base := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return unicode.ToLower(r)
			}
			return -1
		}, faker.Username())
		if len(base) > 12 {
			base = base[:12]
		}
		username := fmt.Sprintf("%s%d%d", base, n, faker.Number(10, 99))
		u, err := s.identity.Register(ctx, service.RegisterInput{
			Username: username,
			Email:    username + "@example.com",
			Password: DemoPassword,
		})
		if err == nil {
			bio := faker.Sentence(8)
			updated, err := s.identity.UpdateProfile(ctx, service.UpdateProfileInput{UserID: u.ID, Bio: &bio})
			if err != nil {
				return nil, fmt.Errorf("seed bio for %s: %w", username, err)
			}
			return updated, nil
		}
		if !models.IsCode(err, models.CodeDuplicateUsername) && !models.IsCode(err, models.CodeDuplicateEmail) {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("seed user: %w", lastErr)
}

func (s *Seeder) engage(ctx context.Context, faker *gofakeit.Faker, users []*models.User, postID uint, comments int, summary *Summary) error {
	for k := 0; k < comments; k++ {
		commenter := users[faker.Number(0, len(users)-1)]
		comment, err := s.threads.AddComment(ctx, service.AddCommentInput{
			ActorID: commenter.ID,
			PostID:  postID,
			Content: faker.Sentence(faker.Number(3, 12)),
		})
		if err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
		summary.Comments++

		if faker.Bool() {
			replier := users[faker.Number(0, len(users)-1)]
			if _, err := s.threads.AddComment(ctx, service.AddCommentInput{
				ActorID:         replier.ID,
				PostID:          postID,
				Content:         faker.Sentence(faker.Number(3, 8)),
				ParentCommentID: &comment.ID,
			}); err != nil {
				return fmt.Errorf("seed reply: %w", err)
			}
			summary.Comments++
		}
	}

	for _, u := range users {
		if faker.Number(0, 2) != 0 {
			continue
		}
		if _, err := s.content.ToggleLike(ctx, u.ID, postID); err != nil {
			return fmt.Errorf("seed like: %w", err)
		}
		summary.Likes++
	}
	return nil
}
