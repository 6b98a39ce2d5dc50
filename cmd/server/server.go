package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pvlink/pvlink/cmd"
	"github.com/pvlink/pvlink/internal/api"
	"github.com/pvlink/pvlink/internal/auth"
	"github.com/pvlink/pvlink/internal/config"
	"github.com/pvlink/pvlink/internal/geo"
	"github.com/pvlink/pvlink/internal/logging"
	"github.com/pvlink/pvlink/internal/models"
	"github.com/pvlink/pvlink/internal/purger"
	"github.com/pvlink/pvlink/internal/repository"
	"github.com/pvlink/pvlink/internal/services"
	"github.com/pvlink/pvlink/internal/session"
	"github.com/pvlink/pvlink/internal/workers"
)

// RunServerCmd launches the API server and the background processes
// (click workers, link purger).
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the URL shortener API server and background workers.",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		log := logging.New(cfg.Log.Level)

		db, err := openDatabase(cfg)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.LinkCountryClick{}); err != nil {
			log.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		sessions, cache, err := openSessionStore(cfg, log)
		if err != nil {
			log.Error("failed to connect to cache", slog.String("error", err.Error()))
			os.Exit(1)
		}

		userRepo := repository.NewUserRepository(db)
		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)

		linkService := services.NewLinkService(linkRepo, log)
		verifier := auth.NewVerifier(userRepo)
		cookies := auth.NewCookieCodec(cfg.SessionTTL())

		var countries geo.Resolver = geo.StaticResolver{}
		if cfg.Analytics.IPInfoToken != "" {
			countries = geo.NewIPInfoResolver(cache, cfg.Analytics.IPInfoToken, log)
		}

		clickEvents := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEvents, clickRepo, countries, log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		linkPurger := purger.New(linkRepo, time.Duration(cfg.Purger.IntervalMinutes)*time.Minute, log)
		go linkPurger.Run(ctx)

		router := gin.New()
		router.Use(gin.Recovery())
		api.SetupRoutes(router, &api.Handlers{
			Links:       linkService,
			Verifier:    verifier,
			Sessions:    sessions,
			Cookies:     cookies,
			ClickEvents: clickEvents,
			FallbackURL: cfg.Server.FallbackURL,
			Log:         log,
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}

		go func() {
			log.Info("starting server", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("server failed", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutdown signal received")

		// Stop accepting requests, then let the workers drain.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", slog.String("error", err.Error()))
		}

		cancel()
		close(clickEvents)
		time.Sleep(time.Second)

		log.Info("server stopped")
	},
}

// openDatabase connects to the configured relational store. SQLite is the
// default; Postgres is selected with database.driver=postgres.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.Database.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	default:
		return gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
	}
}

// openSessionStore connects to Redis when a cache address is configured,
// falling back to the in-process store otherwise. The returned client is
// also reused as the geo lookup cache.
func openSessionStore(cfg *config.Config, log *slog.Logger) (session.Store, *redis.Client, error) {
	if cfg.Cache.Addr == "" {
		log.Warn("no cache configured, sessions are in-memory and will not survive restarts")
		return session.NewMemoryStore(cfg.SessionTTL()), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return session.NewRedisStore(client, cfg.SessionTTL()), client, nil
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
