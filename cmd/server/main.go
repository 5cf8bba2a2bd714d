package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/questboard/internal/badge"
	"github.com/iliyamo/questboard/internal/cache"
	"github.com/iliyamo/questboard/internal/calendar"
	"github.com/iliyamo/questboard/internal/config"
	"github.com/iliyamo/questboard/internal/database"
	"github.com/iliyamo/questboard/internal/handler"
	"github.com/iliyamo/questboard/internal/middleware"
	"github.com/iliyamo/questboard/internal/queue"
	"github.com/iliyamo/questboard/internal/quest"
	"github.com/iliyamo/questboard/internal/repository"
	"github.com/iliyamo/questboard/internal/router"
	publisher "github.com/iliyamo/questboard/internal/service"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	badges := repository.NewBadgeRepo(db)
	if cfg.MigrateOnStart {
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := database.Migrate(mctx, db)
		if err == nil {
			err = database.SeedBadges(mctx, badges, badge.DefaultCatalog)
		}
		cancel()
		if err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	svc := quest.NewService(quest.Deps{
		Quests:    repository.NewQuestRepo(db),
		Templates: repository.NewTemplateRepo(db),
		Stats:     repository.NewStatsRepo(db),
		Badges:    badges,
		Events:    publisher.NewPublisher(cfg.AMQPURL, logger),
		Cache:     cache.NewStatsCache(rdb, cfg.StatsCachePfx, cfg.StatsCacheTTL, logger),
		Clock:     calendar.RealClock{},
		Logger:    logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	router.RegisterRoutes(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), svc, logger),
		Quests:    handler.NewQuestHandler(svc, cfg.Location),
		Templates: handler.NewTemplateHandler(svc, cfg.Location),
		Badges: handler.NewBadgeHandler(svc, cfg.Location, badges, func(ctx context.Context) error {
			return middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
		}, logger),
		Ready: handler.Ready(db),
	}, router.Middlewares{
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		CatalogCache: middleware.NewRedisCache(cacheCfg, rdb),
	}, cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.ConsumerEnabled {
		g.Go(func() error {
			err := queue.StartActivityConsumer(gctx, cfg.AMQPURL, cfg.ActivityLogDir, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
