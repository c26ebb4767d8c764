// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freleefty/internal/cache"
	"freleefty/internal/config"
	"freleefty/internal/database"
	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/oauth"
	"freleefty/internal/repository"
	"freleefty/internal/service"
	"freleefty/internal/storage"
	"freleefty/internal/webhook"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.RateLimiter
	store          *repository.Store

	authService     *service.AuthService
	userService     *service.UserService
	draftService    *service.DraftService
	publishService  *service.PublishService
	fileService     *service.FileService
	articleService  *service.ArticleService
	commentService  *service.CommentService
	likeService     *service.LikeService
	viewService     *service.ViewService
	webhookService  *service.WebhookService
	categoryService *service.CategoryService
}

// NewServer connects to PostgreSQL and Redis, prepares the upload directory
// and wires every service.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	files, err := storage.NewManager(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	provider := oauth.NewNaver(cfg.NaverClientID, cfg.NaverClientSecret)
	return NewServerWithDeps(cfg, db, rdb, files, provider), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with sqlite, miniredis and a stub identity provider.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, files *storage.Manager, provider service.IdentityProvider) *Server {
	store := repository.NewStore(db)
	tokens := cache.NewTokenStore(rdb)
	dispatcher := webhook.NewDispatcher(
		webhook.NewClient(cfg.WebhookUsername, cfg.WebhookAvatarURL),
		store.Webhooks, store.Articles, cfg.SiteURL,
	)

	drafts := service.NewDraftService(store, files)
	return &Server{
		config:         cfg,
		db:             db,
		redis:          rdb,
		promMiddleware: middleware.InitMetrics("freleefty-api"),
		limiter:        middleware.NewRateLimiter(rdb, cfg.IsProduction()),
		store:          store,

		authService:     service.NewAuthService(store.Users, tokens, provider, cfg.JWTSecret),
		userService:     service.NewUserService(store.Users),
		draftService:    drafts,
		publishService:  service.NewPublishService(store, files, dispatcher),
		fileService:     service.NewFileService(store, files, cfg.UploadMaxBytes),
		articleService:  service.NewArticleService(store, files, drafts),
		commentService:  service.NewCommentService(store.Comments, store.Articles),
		likeService:     service.NewLikeService(store.Likes, store.Articles),
		viewService:     service.NewViewService(tokens, store.Views, store.Articles),
		webhookService:  service.NewWebhookService(store.Webhooks, dispatcher),
		categoryService: service.NewCategoryService(store),
	}
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Freleefty API",
		// Multipart bodies are buffered; leave room for the form envelope.
		BodyLimit: int(s.config.UploadMaxBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				if fe.Code == fiber.StatusRequestEntityTooLarge {
					return models.RespondWithError(c, fe.Code, models.NewTooLargeError(s.config.UploadMaxBytes))
				}
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
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
		// Downloads are embedded by the frontend on another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		// fiber refuses credentials with a wildcard origin.
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	if s.config.IsProduction() {
		app.Use(limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests, please try again later.",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	auth := s.AuthRequired()

	authGroup := api.Group("/auth")
	authGroup.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	authGroup.Post("/register", s.limiter.Limit("register", 5, 10*time.Minute, middleware.FailOpen), s.Register)
	authGroup.Post("/refresh", s.Refresh)
	authGroup.Post("/logout", s.Logout)
	if s.config.IsDevelopment() {
		authGroup.Post("/dev-login", s.DevLogin)
	}

	drafts := api.Group("/drafts", auth)
	drafts.Get("/", s.ListDrafts)
	drafts.Post("/", s.CreateDraft)
	drafts.Post("/:id/publish", s.PublishDraft)
	drafts.Post("/:id/files", s.limiter.Limit("upload", 60, time.Minute, middleware.FailOpen), s.UploadFile)
	drafts.Get("/:id", s.GetDraft)
	drafts.Put("/:id", s.UpdateDraft)
	drafts.Delete("/:id", s.DeleteDraft)

	files := api.Group("/files")
	files.Get("/:id/:name", s.AuthOptional(), s.DownloadFile)
	files.Delete("/:id", auth, s.DeleteFile)

	articles := api.Group("/articles")
	articles.Get("/", s.ListArticles)
	articles.Get("/popular", s.ListPopularArticles)
	// Specific /:id/:resource routes before the generic /:id route.
	articles.Get("/:id/next", s.GetNextArticle)
	articles.Get("/:id/prev", s.GetPrevArticle)
	articles.Get("/:id/editions", s.ListEditions)
	articles.Get("/:id/files", s.GetArticleFiles)
	articles.Get("/:id/comments", s.ListComments)
	articles.Post("/:id/comments", auth, s.limiter.Limit("comment", 10, time.Minute, middleware.FailOpen), s.CreateComment)
	articles.Get("/:id/categories", s.ListArticleCategories)
	articles.Put("/:id/categories", auth, s.SetArticleCategories)
	articles.Get("/:id/likes", s.ListLikers)
	articles.Post("/:id/like", auth, s.Like)
	articles.Delete("/:id/like", auth, s.Unlike)
	articles.Post("/:id/view-token", s.IssueViewToken)
	articles.Post("/:id/edit", auth, s.EditArticle)
	articles.Get("/:id/draft", auth, s.GetArticleDraft)
	articles.Get("/:id", s.GetArticle)
	articles.Delete("/:id", auth, s.DeleteArticle)

	api.Get("/editions/:id", s.GetEdition)
	api.Delete("/comments/:id", auth, s.DeleteComment)
	api.Post("/views", s.SubmitView)

	users := api.Group("/users")
	users.Put("/me/name", auth, s.UpdateMyName)
	users.Get("/me/notify", auth, s.GetMyNotify)
	users.Put("/me/notify", auth, s.SetMyNotify)
	users.Get("/:id/articles", s.ListUserArticles)
	users.Get("/:id/likes", s.ListUserLikedArticles)
	users.Get("/:id/comments", s.ListUserComments)
	users.Get("/:id", s.GetUser)

	admin := api.Group("/admin", auth, s.AdminRequired())
	admin.Get("/webhooks", s.ListWebhooks)
	admin.Post("/webhooks", s.CreateWebhook)
	admin.Delete("/webhooks/:id", s.DeleteWebhook)
	admin.Get("/categories", s.ListCategories)
	admin.Post("/categories", s.CreateCategory)
	admin.Put("/categories/:id", s.UpdateCategory)
	admin.Delete("/categories/:id", s.DeleteCategory)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
