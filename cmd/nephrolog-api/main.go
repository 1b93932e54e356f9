package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nephrolog-lt/nephrolog-api/internal/config"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/dialysis"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/health"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/nutrition"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/profile"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/auth"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/metrics"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/middleware"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/validate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nephrolog-api",
		Short: "NephroLog nutrition and health tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tz, err := timezone.NewResolver(cfg.DefaultTimeZone)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load default time zone")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, timezone.HeaderName, "X-User-ID"},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	e.GET("/health", db.HealthHandler(pool))

	// Repositories
	profileRepo := profile.NewRepoPG(pool)
	productRepo := product.NewRepoPG(pool)
	nutritionRepo := nutrition.NewRepoPG(pool)
	healthRepo := health.NewRepoPG(pool)
	dialysisRepo := dialysis.NewRepoPG(pool)

	// Services
	profileSvc := profile.NewService(profileRepo, pool, logger)
	productSvc := product.NewService(productRepo, product.Region(cfg.ProductRegion), logger)
	nutritionSvc := nutrition.NewService(nutritionRepo, pool, productSvc, profileSvc, logger)
	healthSvc := health.NewService(healthRepo, logger)
	dialysisSvc := dialysis.NewService(dialysisRepo, healthSvc, nutritionSvc, logger)

	// Cross-domain wiring: profile and health changes re-derive the day's
	// norms; the liquids norm folds in the day's measured urine.
	profileSvc.SetRecalculator(nutritionSvc)
	healthSvc.SetRecalculator(nutritionSvc)
	nutritionSvc.SetUrineSource(healthSvc)

	api := e.Group("/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with permissive dev authentication")
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	profile.NewHandler(profileSvc).RegisterRoutes(api)
	nutrition.NewHandler(nutritionSvc, productSvc, tz).RegisterRoutes(api)
	health.NewHandler(healthSvc, tz).RegisterRoutes(api)
	dialysis.NewHandler(dialysisSvc, tz).RegisterRoutes(api)

	// Product usage metrics
	if cfg.MetricsInterval > 0 {
		metricsCtx, stopMetrics := context.WithCancel(ctx)
		defer stopMetrics()
		sink := metrics.NewLogSink(logger)
		go metrics.NewReporter(pool, sink, logger, cfg.MetricsInterval).Run(metricsCtx)
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
