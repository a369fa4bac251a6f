package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/elearn-api/api/swagger"
	"github.com/noah-isme/elearn-api/internal/handler"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/repository"
	"github.com/noah-isme/elearn-api/internal/service"
	"github.com/noah-isme/elearn-api/internal/store"
	"github.com/noah-isme/elearn-api/pkg/cache"
	"github.com/noah-isme/elearn-api/pkg/config"
	"github.com/noah-isme/elearn-api/pkg/database"
	"github.com/noah-isme/elearn-api/pkg/export"
	"github.com/noah-isme/elearn-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/elearn-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/elearn-api/pkg/middleware/requestid"
	"github.com/noah-isme/elearn-api/pkg/storage"
)

// @title E-Learning API
// @version 1.0.0
// @description CRUD backend for users, books and courses with JWT auth
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()

	var (
		bookRepo   service.BookRepository
		courseRepo service.CourseRepository
		userRepo   service.UserRepository
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("postgres connection failed", "error", err)
		}
		defer db.Close() //nolint:errcheck
		bookRepo = repository.NewBookRepository(db)
		courseRepo = repository.NewCourseRepository(db)
		userRepo = repository.NewUserRepository(db)
	default:
		books := store.NewBookStore()
		courses := store.NewCourseStore()
		users := store.NewUserStore()
		if cfg.Store.Seed {
			if err := store.Seed(context.Background(), users, books, courses); err != nil {
				logr.Sugar().Fatalw("seeding failed", "error", err)
			}
		}
		bookRepo = books
		courseRepo = courses
		userRepo = users
	}

	var catalogCache *repository.CacheRepository
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog caching disabled", zap.Error(err))
		} else {
			catalogCache = repository.NewCacheRepository(redisClient)
			defer catalogCache.Close() //nolint:errcheck
		}
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("uploads storage init failed", "error", err)
	}

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	bookService := service.NewBookService(bookRepo, cacheOrNil(catalogCache), cfg.Catalog.CacheTTL, validate, logr)
	courseService := service.NewCourseService(courseRepo, cacheOrNil(catalogCache), cfg.Catalog.CacheTTL, validate, logr)
	userService := service.NewUserService(userRepo, uploads, validate, logr)
	exportService := service.NewExportService(bookService, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	metricsService := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(bookService, exportService)
	courseHandler := handler.NewCourseHandler(courseService)
	userHandler := handler.NewUserHandler(userService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", uploads.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(authService)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		books := api.Group("/books")
		{
			books.GET("", bookHandler.List)
			books.GET("/search", bookHandler.Search)
			books.GET("/categories", bookHandler.Categories)
			books.GET("/:id", bookHandler.Get)

			books.GET("/stats", authRequired, staff, bookHandler.Stats)
			books.GET("/export", authRequired, staff, bookHandler.Export)
			books.POST("", authRequired, adminOnly, bookHandler.Create)
			books.PUT("/:id", authRequired, adminOnly, bookHandler.Update)
			books.PATCH("/:id/stock", authRequired, staff, bookHandler.UpdateStock)
			books.DELETE("/:id", authRequired, adminOnly, bookHandler.Delete)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.GET("/search", courseHandler.Search)
			courses.GET("/categories", courseHandler.Categories)
			courses.GET("/:id", courseHandler.Get)

			courses.POST("", authRequired, staff, courseHandler.Create)
			courses.PUT("/:id", authRequired, staff, courseHandler.Update)
			courses.PATCH("/:id/participants", authRequired, staff, courseHandler.UpdateParticipants)
			courses.PATCH("/:id/status", authRequired, staff, courseHandler.UpdateStatus)
			courses.DELETE("/:id", authRequired, adminOnly, courseHandler.Delete)
		}

		users := api.Group("/users", authRequired)
		{
			users.GET("/me", userHandler.Me)
			users.PUT("/me", userHandler.UpdateMe)
			users.POST("/me/picture", userHandler.UploadPicture)

			users.GET("", adminOnly, userHandler.List)
			users.POST("", adminOnly, userHandler.Create)
			users.GET("/:id", adminOnly, userHandler.Get)
			users.PUT("/:id", adminOnly, userHandler.Update)
			users.DELETE("/:id", adminOnly, userHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"store", cfg.Store.Driver,
		"token_ttl", cfg.JWT.Expiration.String(),
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// cacheOrNil converts the optional repository into the service-facing
// interface without wrapping a nil pointer in a non-nil interface value.
func cacheOrNil(c *repository.CacheRepository) service.CatalogCache {
	if c == nil {
		return nil
	}
	return c
}
