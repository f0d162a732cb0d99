package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"titlehub/database"
	"titlehub/internal/config"
	"titlehub/internal/http-api/handler"
	"titlehub/internal/http-api/middleware"
	"titlehub/internal/http-api/repository"
	"titlehub/internal/http-api/service"
	"titlehub/internal/mail"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	// 2️⃣ Connect to the database and run migrations
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3️⃣ Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// 4️⃣ Services
	var mailer mail.Sender
	if cfg.MailEnabled {
		mailer = mail.NewSMTPSender(cfg)
	} else {
		mailer = &mail.LogSender{Logger: logger}
	}
	codes := service.NewCodeGenerator(cfg.JWTSecret, cfg.ConfirmationTTL)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, codes, mailer, cfg)
	userService := service.NewUserService(userRepo, refreshTokenRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, genreRepo, categoryRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo, titleRepo)

	// 5️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/healthz", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := middleware.Authenticate(authService, userRepo)
	adminOnly := middleware.RequireAdmin()
	rateLimited := middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst)

	v1 := r.Group("/api/v1")
	{
		handler.NewAuthHandler(authService).RegisterRoutes(v1, rateLimited)
		handler.NewUserHandler(userService).RegisterRoutes(v1.Group("/users"), authenticated, adminOnly)
		handler.NewCategoryHandler(categoryService).RegisterRoutes(v1.Group("/categories"), authenticated, adminOnly)
		handler.NewGenreHandler(genreService).RegisterRoutes(v1.Group("/genres"), authenticated, adminOnly)

		titles := v1.Group("/titles")
		handler.NewTitleHandler(titleService).RegisterRoutes(titles, authenticated, adminOnly)
		handler.NewReviewHandler(reviewService).RegisterRoutes(titles, authenticated)
		handler.NewCommentHandler(commentService).RegisterRoutes(titles, authenticated)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("Server running", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
