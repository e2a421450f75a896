// @title           Groom Admin Backend API
// @version         1.0.0
// @description     Back-office API for the grooming dashboard: bookings, services, plans, contact details and staff accounts on top of Supabase.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"groom-admin-backend/docs"
	"groom-admin-backend/internal/config"
	"groom-admin-backend/internal/database"
	"groom-admin-backend/internal/events"
	"groom-admin-backend/internal/handlers"
	"groom-admin-backend/internal/middleware"
	"groom-admin-backend/internal/notify"
	"groom-admin-backend/internal/queries"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
	"groom-admin-backend/internal/store"
	"groom-admin-backend/internal/supabase"
	"groom-admin-backend/internal/validation"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.Validator = validation.GinValidator{}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		return err
	}
	adminClient, err := supabase.NewAdminClient(cfg)
	if err != nil {
		return err
	}

	tables, closeTables, err := openTables(ctx, cfg, supabaseClient, adminClient, logger)
	if err != nil {
		return err
	}
	defer closeTables()

	objects := supabase.NewStorageClient(cfg.SupabaseURL, supabase.TableKey(cfg))
	sessions := supabase.NewAuthClient(supabaseClient)

	var identityAdmin store.IdentityAdmin
	if admin := supabase.NewAdminAuthClient(adminClient); admin != nil {
		identityAdmin = admin
	} else {
		logger.Warn("SUPABASE_SERVICE_ROLE_KEY not set, user create and delete are disabled")
	}

	// Query cache
	cache := querycache.New(querycache.Options{
		StaleTime:    cfg.CacheStaleTime,
		GCTime:       cfg.CacheGCTime,
		Retry:        cfg.CacheRetry,
		FetchTimeout: cfg.RequestTimeout,
		Logger:       logger,
	})
	stopJanitor, err := cache.StartJanitor(janitorInterval)
	if err != nil {
		return err
	}
	defer stopJanitor()

	fanout := notify.Multi{notify.NewLogger(logger)}
	var eventsBus handlers.Pinger
	if cfg.RedisURL != "" {
		bus, err := events.NewRedisBus(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer bus.Close()
		eventsBus = bus

		broadcaster := events.NewBroadcaster(bus, logger)
		broadcaster.Attach(cache)
		stopEvents, err := broadcaster.Start(ctx, cache, notify.NewLogger(logger.With("source", "remote")))
		if err != nil {
			return err
		}
		defer stopEvents()

		fanout = append(fanout, broadcaster)
		logger.Info("cross-replica invalidation enabled", "origin", broadcaster.Origin())
	}

	// Resource clients and their cached hooks
	bookingClient := resources.NewBookings(tables, logger)
	serviceClient := resources.NewServices(tables, objects, cfg.ServiceIconsBucket, logger)
	userClient := resources.NewUsers(tables, objects, sessions, identityAdmin, cfg.AvatarsBucket, logger)

	bookings := queries.NewBookings(cache, bookingClient)
	services := queries.NewServices(cache, serviceClient)
	users := queries.NewUsers(cache, userClient)

	// Initialize handlers
	scopes := handlers.NewScopes(cache, fanout)
	usersHandler := handlers.NewUsersHandler(users, scopes)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger,
		Auth:           middleware.AuthMiddleware(cfg),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, handlers.Handlers{
		Health: handlers.NewHealthHandler(handlers.HealthConfig{
			Cache:          cache,
			Bookings:       bookings,
			AdminAvailable: userClient.AdminAvailable(),
			Events:         eventsBus,
		}),
		Auth:      handlers.NewAuthHandler(resources.NewAuth(sessions, userClient, logger), usersHandler),
		Bookings:  handlers.NewBookingsHandler(bookings, scopes),
		Services:  handlers.NewServicesHandler(services, scopes),
		Plans:     handlers.NewPlansHandler(queries.NewPlans(cache, resources.NewPlans(tables, logger)), scopes),
		Contact:   handlers.NewContactHandler(queries.NewContact(cache, resources.NewContact(tables, logger)), scopes),
		Users:     usersHandler,
		Dashboard: handlers.NewDashboardHandler(queries.NewDashboard(bookings, services)),
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", port, "environment", cfg.Environment, "table_backend", cfg.TableBackend)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	cache.Wait()
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openTables picks the table backend. The postgres backend also runs the
// embedded migrations.
func openTables(ctx context.Context, cfg *config.Config, client, admin *supabase.Client, logger *slog.Logger) (store.Tables, func(), error) {
	if cfg.TableBackend == "postgres" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.NewMigrator(db, logger).Run(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("migrations completed successfully")
		pg := database.NewDatabaseClient(db)
		return pg, func() { pg.Close() }, nil
	}

	tableClient := client
	if admin != nil {
		tableClient = admin
	}
	return supabase.NewTableClient(tableClient.Supabase), func() {}, nil
}
