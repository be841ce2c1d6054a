// Package main is the entry point for the artfolio API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"artfolio/internal/domain/auth"
	"artfolio/internal/domain/comments"
	"artfolio/internal/domain/favorites"
	"artfolio/internal/domain/followings"
	"artfolio/internal/domain/posts"
	"artfolio/internal/domain/users"
	"artfolio/internal/infrastructure/blob/cloudinary"
	v1 "artfolio/internal/infrastructure/http/v1"
	"artfolio/internal/infrastructure/storage/postgres"
	"artfolio/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting artfolio server")

	// --- Database pool ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Blob store ---
	blobStore, err := cloudinary.New(cloudinary.Config{
		CloudName: mustEnv("CLOUDINARY_CLOUD_NAME"),
		APIKey:    mustEnv("CLOUDINARY_API_KEY"),
		APISecret: mustEnv("CLOUDINARY_SECRET"),
	})
	if err != nil {
		log.Fatalw("failed to initialize blob store", "error", err)
	}

	// --- JWT ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))

	// --- Repositories ---
	userRepo := postgres.NewUserRepo(txManager)
	postRepo := postgres.NewPostRepo(txManager)
	commentRepo := postgres.NewCommentRepo(txManager)
	followingRepo := postgres.NewFollowingRepo(txManager)
	favoriteRepo := postgres.NewFavoriteRepo(txManager)

	auditor, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	authService := auth.NewService(userRepo, txManager, jwtService, blobStore, auditor)
	usersService := users.NewService(userRepo, txManager, blobStore, auditor)
	commentsService := comments.NewService(commentRepo, userRepo, txManager, auditor)
	followingsService := followings.NewService(followingRepo, userRepo, txManager, blobStore, auditor)
	favoritesService := favorites.NewService(favoriteRepo, userRepo, txManager, auditor)
	postsService := posts.NewService(postRepo, userRepo, commentRepo, txManager, blobStore, auditor)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool.Unwrap(),
		Logger:            log,
		AuthService:       authService,
		UsersService:      usersService,
		PostsService:      postsService,
		CommentsService:   commentsService,
		FollowingsService: followingsService,
		FavoritesService:  favoritesService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
