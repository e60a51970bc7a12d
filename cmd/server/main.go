// Command server runs the campaign generation API.
//
//	@title						Campaign Generation API
//	@version					1.0
//	@description				Drafts promotional messages and campaign images for an education brand.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider access token, sent as "Bearer <token>".
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-campaign-backend/internal/config"
	httpapi "github.com/tbourn/go-campaign-backend/internal/http"
	"github.com/tbourn/go-campaign-backend/internal/observability"
	"github.com/tbourn/go-campaign-backend/internal/poll"
	"github.com/tbourn/go-campaign-backend/internal/prompt"
	"github.com/tbourn/go-campaign-backend/internal/providers/completion"
	"github.com/tbourn/go-campaign-backend/internal/providers/identity"
	"github.com/tbourn/go-campaign-backend/internal/providers/imagegen"
	"github.com/tbourn/go-campaign-backend/internal/repo"
	"github.com/tbourn/go-campaign-backend/internal/services"
	"github.com/tbourn/go-campaign-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const replayPurgeEvery = time.Hour

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, ver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Replay store
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open sqlite")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	go purgeReplays(ctx, db)

	// Task guard: Redis when configured, otherwise in-process
	var guard poll.Guard = poll.NewLocalGuard()
	rdb, err := repo.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("redis unavailable, task guard is process-local")
	case rdb != nil:
		defer rdb.Close()
		guard = poll.NewRedisGuard(rdb, "campaign:poll:", cfg.Poll.GuardTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis task guard enabled")
	}

	composer, err := prompt.New(prompt.DefaultBrand.WithOverrides(cfg.Brand.Name, cfg.Brand.City))
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt templates")
	}

	// Providers
	auth := identity.New(identity.Config{
		URL:     cfg.Auth.URL,
		AnonKey: cfg.Auth.AnonKey,
		Timeout: cfg.Auth.Timeout,
	}, nil)
	llm := completion.New(completion.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Referer: cfg.Completion.Referer,
		Title:   cfg.Completion.Title,
		Timeout: cfg.Completion.Timeout,
	}, nil)
	tasks := imagegen.New(imagegen.Config{
		APIKey:      cfg.Image.APIKey,
		BaseURL:     cfg.Image.BaseURL,
		TasksPath:   cfg.Image.TasksPath,
		AuthHeader:  cfg.Image.AuthHeader,
		NumImages:   cfg.Image.NumImages,
		AspectRatio: cfg.Image.AspectRatio,
		Timeout:     cfg.Image.Timeout,

		MaxBodyBytes: cfg.Image.MaxBodyBytes,
	}, nil)

	// Services
	poller := services.NewTaskPoller(tasks, guard, poll.Policy{
		Interval:    cfg.Poll.Interval,
		MaxAttempts: cfg.Poll.MaxAttempts,
	}, cfg.Poll.MaxConcurrent)
	msgSvc := services.NewMessageService(composer, llm)
	msgSvc.MaxIdeaRunes = cfg.MaxIdeaRunes
	imgSvc := services.NewImageService(composer, llm, tasks, poller)
	imgSvc.MaxIdeaRunes = cfg.MaxIdeaRunes

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Auth:     auth,
		Messages: msgSvc,
		Images:   imgSvc,
		Replays:  repo.Replays{DB: db},
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	// in-flight image requests may be mid-poll; give them the write timeout
	sctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// purgeReplays deletes expired idempotency replays until ctx is done.
func purgeReplays(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(replayPurgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredReplays(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge replays")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired replays")
			}
		}
	}
}
