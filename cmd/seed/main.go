// Command seed fills the database with demo content.
package main

import (
	"context"
	"flag"
	"log"

	"talkshalk/internal/config"
	"talkshalk/internal/credential"
	"talkshalk/internal/database"
	"talkshalk/internal/observability"
	"talkshalk/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Posts per user")
	commentsPerPost := flag.Int("comments", 3, "Top-level comments per post")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible content (0 = random)")
	shouldClean := flag.Bool("clean", false, "Delete all existing rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.Logger = observability.NewLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Migrate regardless of environment; Connect skips it in production.
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, credential.NewBcrypt(cfg.BcryptCost))

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx, seed.Options{
		Users:           *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		RandSeed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes", summary.Users, summary.Posts, summary.Comments, summary.Likes)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
