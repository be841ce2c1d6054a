// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"artfolio/internal/domain/auth"
	"artfolio/internal/domain/comments"
	"artfolio/internal/domain/favorites"
	"artfolio/internal/domain/followings"
	"artfolio/internal/domain/posts"
	"artfolio/internal/domain/users"
	"artfolio/internal/infrastructure/http/v1/handlers"
	"artfolio/internal/infrastructure/http/v1/middleware"
	"artfolio/pkg/logger"
)

// RouterConfig holds the services the HTTP surface exposes.
type RouterConfig struct {
	// Pool is the database pool, used by health checks.
	Pool *pgxpool.Pool

	// Logger for request logging.
	Logger *logger.Logger

	AuthService       *auth.Service
	UsersService      *users.Service
	PostsService      *posts.Service
	CommentsService   *comments.Service
	FollowingsService *followings.Service
	FavoritesService  *favorites.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	usersHandler := handlers.NewUsersHandler(base, cfg.UsersService)
	postsHandler := handlers.NewPostsHandler(base, cfg.PostsService)
	commentsHandler := handlers.NewCommentsHandler(base, cfg.CommentsService)
	followingsHandler := handlers.NewFollowingsHandler(base, cfg.FollowingsService)
	favoritesHandler := handlers.NewFavoritesHandler(base, cfg.FavoritesService)

	v1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		// Public reads; identity is optional but, when present, shapes
		// viewer-specific fields like the favorited flag.
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(cfg.AuthService))
		{
			public.GET("/trending", postsHandler.Trending)
			public.GET("/search", postsHandler.Search)
			public.GET("/posts/:post_id", postsHandler.Get)
			public.GET("/users/:username", usersHandler.GetProfile)
			public.GET("/users/:username/posts", postsHandler.ListByArtist)
			public.GET("/users/:username/favorites", postsHandler.ListFavorites)
		}

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/logout", authHandler.Logout)

			protected.POST("/posts", postsHandler.Upload)
			protected.DELETE("/posts/:post_id", postsHandler.Delete)
			protected.GET("/feed", postsHandler.Feed)

			protected.POST("/posts/:post_id/comments", commentsHandler.Add)
			protected.DELETE("/comments/:comment_id", commentsHandler.Remove)

			protected.POST("/posts/:post_id/favorite", favoritesHandler.Favorite)
			protected.DELETE("/posts/:post_id/favorite", favoritesHandler.Unfavorite)

			protected.POST("/followings", followingsHandler.Follow)
			protected.DELETE("/followings/:username", followingsHandler.Unfollow)
			protected.GET("/followings", followingsHandler.List)

			protected.PUT("/users/me", usersHandler.EditProfile)
		}
	}

	return router
}
