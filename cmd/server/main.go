package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "asha/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"asha/internal/auth"
	"asha/internal/cache"
	"asha/internal/config"
	"asha/internal/db"
	"asha/internal/document"
	"asha/internal/handler"
	"asha/internal/joblink"
	"asha/internal/llm"
	"asha/internal/logging"
	"asha/internal/opportunity"
	"asha/internal/repository"
	"asha/internal/router"
	"asha/internal/scrape"
	"asha/internal/service"
	"asha/internal/session"
	"asha/internal/skills"
)

// @title Asha Career Assistant API
// @version 1.0
// @description Career assistant API with chat, resume analysis, opportunity search and JWT authentication.
// @host localhost:9002
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, err := newUserRepository(cfg)
	if err != nil {
		slog.Error("user store init", slog.Any("error", err))
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		slog.Warn("redis unreachable, using in-process cache only", slog.Any("error", err))
	}

	gen, err := llm.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("text generation init", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, generated replies are disabled")
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize the chat pipeline
	fetcher := scrape.NewFetcher(cfg.ScrapeTimeout)
	extractor := skills.NewExtractor(gen)
	aggregator := opportunity.NewAggregator(opportunity.DefaultPipelines(fetcher), gen, cacheClient)
	scraper := joblink.NewScraper(fetcher)
	ingestor := document.NewIngestor(cfg.UploadDir)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	chatService := service.NewChatService(session.NewRegistry(), extractor, aggregator, scraper, ingestor, gen)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler()
	chatHandler := handler.NewChatHandler(chatService)
	listingHandler := handler.NewListingHandler(chatService)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, jwtService, authService, authHandler, userHandler, chatHandler, listingHandler)

	slog.Info("swagger documentation available", slog.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server starting", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server start", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", slog.Any("error", err))
	}
}

// newUserRepository picks MySQL when a DSN is configured and the JSON file
// otherwise.
func newUserRepository(cfg *config.Config) (repository.UserRepository, error) {
	if cfg.MySQLDSN != "" {
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		slog.Info("using mysql user store")
		return repository.NewGormUserRepository(gormDB), nil
	}
	slog.Info("using file user store", slog.String("path", cfg.UsersFile))
	return repository.NewFileUserRepository(cfg.UsersFile)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
