package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/siegrin/basecamp-backend/api/routes"
	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/internal/analytics"
	"github.com/siegrin/basecamp-backend/internal/auth"
	"github.com/siegrin/basecamp-backend/internal/cart"
	categorysvc "github.com/siegrin/basecamp-backend/internal/categories"
	productsvc "github.com/siegrin/basecamp-backend/internal/products"
	rentalsvc "github.com/siegrin/basecamp-backend/internal/rentals"
	"github.com/siegrin/basecamp-backend/internal/settings"
	"github.com/siegrin/basecamp-backend/internal/users"
	"github.com/siegrin/basecamp-backend/pkg/auth/session"
	"github.com/siegrin/basecamp-backend/pkg/config"
	"github.com/siegrin/basecamp-backend/pkg/db"
	"github.com/siegrin/basecamp-backend/pkg/logger"
	"github.com/siegrin/basecamp-backend/pkg/migrate"
	"github.com/siegrin/basecamp-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, dbClient, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, sessions *session.Manager, logg *logger.Logger) (routes.Services, error) {
	conn := dbClient.DB()

	activityService, err := activity.NewService(activity.NewRepository(conn), logg)
	if err != nil {
		return routes.Services{}, err
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(conn), activityService)
	if err != nil {
		return routes.Services{}, err
	}

	categoryRepo := categorysvc.NewRepository(conn)
	categoryService, err := categorysvc.NewService(categoryRepo, activityService)
	if err != nil {
		return routes.Services{}, err
	}

	productRepo := productsvc.NewRepository(conn)
	productService, err := productsvc.NewService(productRepo, categoryRepo, activityService)
	if err != nil {
		return routes.Services{}, err
	}

	rentalService, err := rentalsvc.NewService(dbClient, rentalsvc.NewRepository(conn), productRepo, activityService, analyticsService, logg)
	if err != nil {
		return routes.Services{}, err
	}

	cartValidator, err := cart.NewValidator(productRepo)
	if err != nil {
		return routes.Services{}, err
	}

	settingsService, err := settings.NewService(settings.NewRepository(conn), activityService)
	if err != nil {
		return routes.Services{}, err
	}

	userRepo := users.NewRepository(conn)
	userService, err := users.NewService(userRepo, activityService, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		ActivityLog:    activityService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:       authService,
		Users:      userService,
		Products:   productService,
		Categories: categoryService,
		Rentals:    rentalService,
		Cart:       cartValidator,
		Activity:   activityService,
		Analytics:  analyticsService,
		Settings:   settingsService,
	}, nil
}
