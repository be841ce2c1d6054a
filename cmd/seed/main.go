// Package main provides a CLI tool for applying the schema and seeding
// demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"artfolio/internal/infrastructure/storage/postgres"
	"artfolio/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username            varchar(30) PRIMARY KEY,
		password_hash       varchar(100) NOT NULL,
		profile_pic_id      text,
		profile_pic_version bigint,
		banner_pic_id       text,
		banner_pic_version  bigint,
		summary             varchar(2000),
		created_at          timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		public_id   text PRIMARY KEY,
		artist_name varchar(30) NOT NULL REFERENCES users(username),
		title       varchar(200) NOT NULL,
		description text NOT NULL,
		width       int NOT NULL,
		height      int NOT NULL,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_posts_artist ON posts (artist_name, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id             bigserial PRIMARY KEY,
		post_public_id text NOT NULL REFERENCES posts(public_id) ON DELETE CASCADE,
		username       varchar(30) NOT NULL REFERENCES users(username),
		content        varchar(5000) NOT NULL,
		created_at     timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_public_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS followings (
		follower_name varchar(30) NOT NULL REFERENCES users(username),
		followed_name varchar(30) NOT NULL REFERENCES users(username),
		created_at    timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (follower_name, followed_name),
		CHECK (follower_name <> followed_name)
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		username       varchar(30) NOT NULL REFERENCES users(username),
		post_public_id text NOT NULL REFERENCES posts(public_id) ON DELETE CASCADE,
		favorited_at   timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (username, post_public_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_favorites_post ON favorites (post_public_id)`,

	`CREATE TABLE IF NOT EXISTS sys_audit (
		id                 uuid PRIMARY KEY,
		action             text NOT NULL,
		entity_type        text NOT NULL,
		entity_id          text NOT NULL,
		username           varchar(30),
		payload            jsonb,
		payload_compressed bytea,
		compression_algo   text NOT NULL DEFAULT 'none',
		created_at         timestamptz NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity ON sys_audit (entity_type, entity_id, created_at DESC)`,
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("demo data seeded")
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	password := os.Getenv("SEED_DEMO_PASSWORD")
	if password == "" {
		password = "changeme123"
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	demoUsers := []string{"demo_artist", "demo_viewer"}
	for _, username := range demoUsers {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (username, password_hash)
			VALUES ($1, $2)
			ON CONFLICT (username) DO NOTHING
		`, username, string(passwordHash))
		if err != nil {
			return fmt.Errorf("insert demo user %s: %w", username, err)
		}
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO followings (follower_name, followed_name)
		VALUES ('demo_viewer', 'demo_artist')
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert demo following: %w", err)
	}

	log.Infow("demo users created", "users", demoUsers)
	return nil
}
