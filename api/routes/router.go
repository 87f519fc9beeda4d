package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servanahq/servana-backend/api/controllers"
	"github.com/servanahq/servana-backend/api/middleware"
	"github.com/servanahq/servana-backend/internal/auth"
	"github.com/servanahq/servana-backend/internal/bookings"
	checkoutsvc "github.com/servanahq/servana-backend/internal/checkout"
	"github.com/servanahq/servana-backend/internal/confirm"
	"github.com/servanahq/servana-backend/internal/locations"
	"github.com/servanahq/servana-backend/pkg/auth/session"
	"github.com/servanahq/servana-backend/pkg/config"
	"github.com/servanahq/servana-backend/pkg/db"
	"github.com/servanahq/servana-backend/pkg/enums"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	confirmService confirm.Service,
	checkoutService checkoutsvc.Service,
	locationsRepo *locations.Repository,
	bookingsRepo *bookings.Repository,
	publisher *locations.Publisher,
	subscriber *locations.Subscriber,
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
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/sign-up", controllers.AuthSignUp(registerService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/sign-in", controllers.AuthSignIn(authService, logg))
		r.Post("/sign-out", controllers.AuthSignOut(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
		Post("/api/confirm-user", controllers.ConfirmUser(confirmService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Post("/create-checkout-session", controllers.CreateCheckoutSession(checkoutService, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.ListBookings(bookingsRepo, logg))
			r.With(middleware.RequireRoles(logg, enums.RoleCustomer)).Post("/", controllers.CreateBooking(bookingsRepo, logg))
			r.With(middleware.RequireRoles(logg, enums.RoleVendor)).Post("/{bookingId}/status", controllers.UpdateBookingStatus(bookingsRepo, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.With(middleware.RequireRoles(logg, enums.RoleVendor)).Post("/", controllers.ReportLocation(locationsRepo, logg))

			r.Route("/share", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleVendor))
				r.Post("/start", controllers.StartLocationShare(publisher, bookingsRepo, logg))
				r.Post("/stop", controllers.StopLocationShare(publisher, logg))
				r.Get("/status", controllers.LocationShareStatus(publisher, logg))
			})

			r.Route("/vendors/{vendorId}", func(r chi.Router) {
				r.Get("/latest", controllers.LatestLocation(locationsRepo, logg))
				r.Get("/stream", controllers.StreamLocation(subscriber, logg))
			})
		})
	})

	return r
}
