// Package server contains the HTTP handlers and routing for the Mingle API.
package server

import (
	"context"
	"time"

	"mingle/internal/cache"
	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/middleware"
	"mingle/internal/repository"
	"mingle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
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
	validate       *validator.Validate
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	postService    *service.PostService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          cache.GetClient(),
		validate:       validator.New(),
		promMiddleware: middleware.InitMetrics("mingle-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		postService:    service.NewPostService(postRepo, nil),
		userService:    service.NewUserService(userRepo),
	}, nil
}

// SetupMiddleware wires the global middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger())
}

// SetupRoutes registers all API routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.Health)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	posts := api.Group("/posts", middleware.AuthRequired)
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.ListPosts)
	posts.Get("/:id", s.GetPost)

	voteLimit := middleware.RateLimit(s.redis, "vote", 30, time.Minute)
	posts.Post("/:id/like", voteLimit, s.LikePost)
	posts.Post("/:id/dislike", voteLimit, s.DislikePost)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, "comment", 20, time.Minute), s.CreateComment)

	topics := api.Group("/topics", middleware.AuthRequired)
	topics.Get("/:topic/most-active", s.MostActiveByTopic)
	topics.Get("/:topic/expired", s.ExpiredByTopic)
}

// Health handles GET /health
func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("redis close failed", "error", err.Error())
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
