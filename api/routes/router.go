package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/siegrin/basecamp-backend/api/controllers"
	"github.com/siegrin/basecamp-backend/api/middleware"
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
	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/logger"
	"github.com/siegrin/basecamp-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth       auth.Service
	Users      users.Service
	Products   productsvc.Service
	Categories categorysvc.Service
	Rentals    rentalsvc.Service
	Cart       *cart.Validator
	Activity   activity.Service
	Analytics  analytics.Service
	Settings   settings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.Checker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	// Public storefront surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(svcs.Products, logg))
		r.Get("/products/{productId}", controllers.GetProduct(svcs.Products, svcs.Analytics, logg))
		r.Get("/categories", controllers.ListCategories(svcs.Categories, logg))
		r.Get("/categories/{categoryId}", controllers.GetCategory(svcs.Categories, logg))
		r.Get("/settings", controllers.ListSettings(svcs.Settings, logg))
		r.Get("/settings/{key}", controllers.GetSetting(svcs.Settings, logg))
		r.Post("/cart/validate", controllers.ValidateCart(svcs.Cart, logg))
	})

	// Authenticated customer surface.
	r.Route("/api/v1/rentals", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RateLimit(redisClient, int64(cfg.RateLimit.APILimit), cfg.RateLimit.APIWindow, logg))

		r.Post("/", controllers.CreateRental(svcs.Rentals, logg))
		r.Get("/", controllers.ListRentals(svcs.Rentals, logg))
		r.Get("/{rentalId}", controllers.GetRental(svcs.Rentals, logg))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RateLimit(redisClient, int64(cfg.RateLimit.APILimit), cfg.RateLimit.APIWindow, logg))

		r.Get("/me", controllers.GetCurrentUser(svcs.Users, logg))
	})

	// Admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
		r.Use(middleware.RateLimit(redisClient, int64(cfg.RateLimit.APILimit), cfg.RateLimit.APIWindow, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(svcs.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(svcs.Categories, logg))
			r.Patch("/{categoryId}", controllers.AdminUpdateCategory(svcs.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(svcs.Categories, logg))
			r.Post("/subcategories", controllers.AdminCreateSubcategory(svcs.Categories, logg))
			r.Patch("/subcategories/{subcategoryId}", controllers.AdminUpdateSubcategory(svcs.Categories, logg))
			r.Delete("/subcategories/{subcategoryId}", controllers.AdminDeleteSubcategory(svcs.Categories, logg))
		})

		r.Route("/rentals", func(r chi.Router) {
			r.Get("/", controllers.ListRentals(svcs.Rentals, logg))
			r.Get("/{rentalId}", controllers.GetRental(svcs.Rentals, logg))
			r.Post("/{rentalId}/activate", controllers.AdminActivateRental(svcs.Rentals, logg))
			r.Post("/{rentalId}/complete", controllers.AdminCompleteRental(svcs.Rentals, logg))
			r.Post("/{rentalId}/cancel", controllers.AdminCancelRental(svcs.Rentals, logg))
			r.Delete("/", controllers.AdminResetRentals(svcs.Rentals, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(svcs.Users, logg))
			r.Get("/{userId}", controllers.AdminGetUser(svcs.Users, logg))
			r.Patch("/{userId}", controllers.AdminUpdateUser(svcs.Users, logg))
			r.Post("/{userId}/deactivate", controllers.AdminDeactivateUser(svcs.Users, logg))
			r.Post("/{userId}/reset-password", controllers.AdminResetUserPassword(svcs.Users, logg))
		})

		r.Route("/activity", func(r chi.Router) {
			r.Get("/", controllers.AdminListActivity(svcs.Activity, logg))
			r.Delete("/", controllers.AdminResetActivity(svcs.Activity, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", controllers.AdminAnalyticsSnapshot(svcs.Analytics, logg))
			r.Delete("/", controllers.AdminResetAnalytics(svcs.Analytics, logg))
		})

		r.Put("/settings/{key}", controllers.AdminUpdateSetting(svcs.Settings, logg))
	})

	return r
}
