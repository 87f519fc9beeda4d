package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/servanahq/servana-backend/api/routes"
	"github.com/servanahq/servana-backend/internal/auth"
	"github.com/servanahq/servana-backend/internal/bookings"
	checkoutsvc "github.com/servanahq/servana-backend/internal/checkout"
	"github.com/servanahq/servana-backend/internal/confirm"
	"github.com/servanahq/servana-backend/internal/locations"
	"github.com/servanahq/servana-backend/internal/roles"
	"github.com/servanahq/servana-backend/internal/users"
	"github.com/servanahq/servana-backend/pkg/auth/session"
	"github.com/servanahq/servana-backend/pkg/config"
	"github.com/servanahq/servana-backend/pkg/db"
	"github.com/servanahq/servana-backend/pkg/geo"
	"github.com/servanahq/servana-backend/pkg/logger"
	"github.com/servanahq/servana-backend/pkg/metrics"
	"github.com/servanahq/servana-backend/pkg/migrate"
	"github.com/servanahq/servana-backend/pkg/realtime"
	"github.com/servanahq/servana-backend/pkg/redis"
	pkgstripe "github.com/servanahq/servana-backend/pkg/stripe"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
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

	usersRepo := users.NewRepository(dbClient.DB())
	rolesRepo := roles.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())
	locationsRepo := locations.NewRepository(dbClient.DB())

	roleResolver, err := roles.NewResolver(rolesRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create role resolver", err)
		os.Exit(1)
	}

	trackingMetrics := metrics.NewTrackingMetrics(prometheus.DefaultRegisterer)

	provider, err := auth.NewLocalProvider(auth.LocalProviderParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		RoleResolver:   roleResolver,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth provider", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Provider:     provider,
		RoleResolver: roleResolver,
		Logger:       logg,
		Metrics:      trackingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	confirmService, err := confirm.NewService(confirm.ServiceParams{
		UserRepo: usersRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create confirm service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Provider:     provider,
		Roles:        rolesRepo,
		RoleResolver: roleResolver,
		Confirmer:    confirmService,
		Logger:       logg,
		Metrics:      trackingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Client:          checkoutsvc.NewStripeClient(stripeClient),
		AppURL:          cfg.App.URL,
		DefaultCurrency: stripeClient.DefaultCurrency(),
		Logger:          logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	source, err := realtime.NewRedisSource(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create realtime source", err)
		os.Exit(1)
	}

	publisher, err := locations.NewPublisher(locations.PublisherParams{
		Store:        locationsRepo,
		Source:       source,
		ChannelFunc:  redisClient.LocationChannel,
		Watcher:      geo.NewFeedWatcher(),
		WatchOptions: geo.OptionsFromConfig(cfg.Geo),
		Logger:       logg,
		Metrics:      trackingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location publisher", err)
		os.Exit(1)
	}
	defer publisher.Close()

	subscriber, err := locations.NewSubscriber(locations.SubscriberParams{
		Store:       locationsRepo,
		Source:      source,
		ChannelFunc: redisClient.LocationChannel,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location subscriber", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			confirmService,
			checkoutService,
			locationsRepo,
			bookingsRepo,
			publisher,
			subscriber,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
