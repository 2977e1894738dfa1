package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/hashgate/adapters/events"
	"github.com/layer-3/hashgate/adapters/identity"
	"github.com/layer-3/hashgate/adapters/mirror"
	"github.com/layer-3/hashgate/adapters/store"
	"github.com/layer-3/hashgate/adapters/tokenizer"
	"github.com/layer-3/hashgate/internal/config"
	"github.com/layer-3/hashgate/ports"
	"github.com/layer-3/hashgate/service"
	"github.com/layer-3/hashgate/transport/http"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gin.SetMode(cfg.GetGinMode())

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to parse redis url", slog.String("error", err.Error()))
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create event publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	nonceStore := store.NewRedisStore(redisClient)
	ledger := mirror.NewClient(mirror.ClientConfig{
		BaseURL: cfg.MirrorNodeURL,
		Logger:  logger,
	})
	sessionTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.SessionSecret), cfg.SessionIssuer)
	eventPub := events.NewWatermillPublisher(publisher)

	var directory ports.Directory
	if cfg.GraphQLEndpoint != "" {
		directory = identity.NewGraphQLDirectory(cfg.GraphQLEndpoint, cfg.GraphQLAdminSecret)
	} else {
		logger.Warn("GRAPHQL_ENDPOINT not set, using in-memory user directory")
		directory = identity.NewMemoryDirectory()
	}

	authService := service.NewAuthService(
		nonceStore,
		ledger,
		directory,
		sessionTokenizer,
		eventPub,
		logger,
		service.AuthConfig{
			ChallengeSecret:    []byte(cfg.ChallengeSecret),
			FrontendURL:        cfg.FrontendURL,
			BypassVerification: cfg.BypassSignatureVerification,
		},
	)
	holdersService := service.NewHoldersService(ledger, logger)

	handlers := http.NewHandlers(authService, holdersService, logger)
	router := http.SetupRouter(handlers, sessionTokenizer)

	server := &stdhttp.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
