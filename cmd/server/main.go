// Command server runs the gamification engine HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcents/gamification-engine/internal/api/gamification"
	"github.com/smartcents/gamification-engine/internal/cache"
	"github.com/smartcents/gamification-engine/internal/config"
	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/progression"
	"github.com/smartcents/gamification-engine/internal/repository"
	"github.com/smartcents/gamification-engine/internal/service/badges"
	"github.com/smartcents/gamification-engine/internal/service/stats"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	// Database
	if cfg.Database.Postgres.MigrationsPath != "" {
		if err := repository.Migrate(&cfg.Database.Postgres, log); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// Optional Redis cache
	var c *cache.Cache
	if cfg.CacheEnabled() {
		c, err = cache.New(&cfg.Database.Redis, log)
		if err != nil {
			return err
		}
		defer c.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	learningRepo := repository.NewLearningRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	// Seed the badge catalog from config
	if err := seedBadges(cfg, badgeRepo, log); err != nil {
		return err
	}

	// Services
	statsService := stats.NewService(
		learningRepo,
		budgetRepo,
		goalRepo,
		userRepo,
		c,
		cfg.Cache.GetActiveModuleCountTTL(),
		log.Component("stats"),
	)
	badgeService := badges.NewService(badgeRepo, userRepo, statsService, log.Component("badges"))
	progressionService := progression.NewService(
		userRepo,
		budgetRepo,
		learningRepo,
		cfg.Gamification.FirstBudgetXP,
		cfg.Gamification.GoalAchievedXP,
		log.Component("progression"),
	)

	// HTTP server
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := gamification.NewHandler(badgeService, statsService, progressionService, log.Component("api"))
	handler.RegisterRoutes(router)

	router.GET("/health", func(ctx *gin.Context) {
		if err := db.Health(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedBadges upserts the configured badge catalog.
func seedBadges(cfg *config.Config, badgeRepo *repository.BadgeRepository, log *logger.Logger) error {
	for _, seed := range cfg.Gamification.Badges {
		raw, err := repository.RawCriteria(seed.Criteria)
		if err != nil {
			return fmt.Errorf("badge %s: %w", seed.Name, err)
		}

		badge := &models.Badge{
			Name:        seed.Name,
			Description: seed.Description,
			Icon:        seed.Icon,
			Rarity:      seed.Rarity,
			XPBonus:     seed.XPBonus,
			Criteria:    raw,
			Active:      seed.Active,
		}
		if err := badgeRepo.UpsertByName(badge); err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", seed.Name, err)
		}
	}

	if len(cfg.Gamification.Badges) > 0 {
		log.Info().Int("badges", len(cfg.Gamification.Badges)).Msg("Badge catalog seeded")
	}
	return nil
}
