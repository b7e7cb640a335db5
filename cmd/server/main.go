package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata" // CLUB_TIMEZONE must resolve in minimal containers

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/calendar"
	"github.com/iliyamo/poker-club/internal/config"
	"github.com/iliyamo/poker-club/internal/database"
	"github.com/iliyamo/poker-club/internal/handler"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/middleware"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
	"github.com/iliyamo/poker-club/internal/router"
	"github.com/iliyamo/poker-club/internal/service"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logging.Default().Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; print plainly.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.NewJSON(logging.ParseLevel(cfg.LogLevel))
	logging.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		version, err := database.MigrateUp(db.DB, cfg.DBName)
		if err != nil {
			return err
		}
		log.Info("schema up to date", "version", version)
	}

	users := repository.NewUserRepo(db)
	if cfg.AdminEmail != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		if created {
			log.Info("bootstrap admin created", "email", cfg.AdminEmail)
		}
	}

	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()
	rdb := connectRedis(ctx, log)
	if rdb != nil {
		defer rdb.Close()
	}

	var pub service.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub = service.NewPublisher(cfg.RabbitMQURL)
	}
	notifier := service.NewContentNotifier(pub, cache.NewInvalidator(rdb, cacheCfg.Prefix, log), log)
	if pub != nil {
		go func() {
			if err := queue.StartContentConsumer(ctx, cfg.RabbitMQURL, notifier.Apply, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("content consumer stopped", "error", err)
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, cache invalidation runs inline")
	}

	structures := repository.NewStructureRepo(db)
	h := router.Handlers{
		Auth: handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db), log),
		Tournaments: handler.NewTournamentHandler(repository.NewTournamentRepo(db), structures, notifier, calendar.Options{
			BaseURL:  cfg.PublicBaseURL,
			Location: cfg.ClubVenue,
			Domain:   cfg.CalendarDomain,
		}, log),
		Structures: handler.NewStructureHandler(structures, notifier, log),
		CashGames:  handler.NewCashGameHandler(repository.NewCashGameRepo(db), notifier, cfg.ClubLocation, log),
		Banners:    handler.NewBannerHandler(repository.NewBannerRepo(db), notifier, log),
		News:       handler.NewNewsHandler(repository.NewNewsRepo(db), notifier, log),
		Gallery:    handler.NewGalleryHandler(repository.NewGalleryRepo(db), notifier, log),
		Players:    handler.NewPlayerHandler(repository.NewPlayerRepo(db), notifier, log),
		Uploads:    handler.NewUploadHandler(cfg.UploadDir, cfg.UploadMaxBytes, cfg.PublicBaseURL, log),
		Dashboard:  handler.NewDashboardHandler(repository.NewStatsRepo(db), log),
	}

	e := newEcho(cfg, log)
	router.Register(e, db, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     cacheCfg,
		RateLimit: rateCfg,
		UploadDir: cfg.UploadDir,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("http server starting", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(cfg config.Config, log *logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.SonicSerializer{}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	// Uploads are the largest bodies.
	e.Use(echomw.BodyLimit(bodyLimit(cfg.UploadMaxBytes)))
	e.Use(middleware.RequestLogger(log))
	return e
}

// bodyLimit renders the upload cap plus multipart overhead in the "5M"
// form BodyLimit expects.
func bodyLimit(uploadMax int64) string {
	const mib = 1 << 20
	n := uploadMax/mib + 1
	if n < 2 {
		n = 2
	}
	return strconv.FormatInt(n, 10) + "M"
}

// connectRedis returns nil when Redis is unreachable; the API then runs
// without response cache and rate limits.
func connectRedis(ctx context.Context, log *logging.Logger) *redis.Client {
	rc := config.LoadRedisConfig()
	rdb, err := config.NewRedisClient(ctx, rc)
	if err != nil {
		log.Warn("redis unavailable, cache and rate limiting disabled", "addr", rc.Addr, "error", err)
		return nil
	}
	log.Info("redis connected", "addr", rc.Addr)
	return rdb
}
