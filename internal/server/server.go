// Package server contains the HTML, JSON and WebSocket handlers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/auth"
	"liftlog/internal/cache"
	"liftlog/internal/config"
	"liftlog/internal/database"
	"liftlog/internal/middleware"
	"liftlog/internal/models"
	"liftlog/internal/notifications"
	"liftlog/internal/repository"
	"liftlog/internal/repository/firestore"
	"liftlog/internal/seed"
	"liftlog/internal/service"
	"liftlog/internal/session"
	"liftlog/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	stores         *repository.Stores
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	auth           *auth.Service
	sessions       *session.Store
	registry       *app.Registry
	hub            *notifications.Hub
	notifier       *notifications.Notifier
	relay          *notifications.Relay
	views          *views.Templates
	catalog        *service.CatalogService
	logs           *service.LogService
	profiles       *service.ProfileService
	accounts       *service.AccountService
	unsubscribe    func()
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	stores, err := OpenStores(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	// Redis is optional: without it the relay, rate limits and cache are off.
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	authSvc := auth.NewService(stores.Accounts, auth.Config{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL(),
		InstanceID: cfg.InstanceID,
	})

	s, err := NewServerWithDeps(cfg, stores, redisClient, authSvc)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return s, nil
}

// OpenStores connects the store backend named by cfg.
func OpenStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	if cfg.StoreBackend == config.BackendFirestore {
		client, err := firestore.Connect(ctx, cfg.FirestoreProj, cfg.FirestoreCreds)
		if err != nil {
			return nil, fmt.Errorf("firestore connection failed: %w", err)
		}
		return firestore.NewStores(client), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return repository.NewGormStores(db), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the stores and Redis.
func NewServerWithDeps(cfg *config.Config, stores *repository.Stores, redisClient *redis.Client, authSvc *auth.Service) (*Server, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	profiles := service.NewProfileService(stores.Profiles)
	sessions := session.NewStore(authSvc, session.Options{TTL: cfg.VisitorTTL()})

	s := &Server{
		config:         cfg,
		stores:         stores,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("liftlog"),
		auth:           authSvc,
		sessions:       sessions,
		registry:       app.NewRegistry(sessions, profiles, app.RegistryOptions{TTL: cfg.VisitorTTL()}),
		hub:            notifications.NewHub(),
		views:          tmpl,
		catalog:        service.NewCatalogService(stores.Templates, seed.Starter),
		logs:           service.NewLogService(stores.Logs),
		profiles:       profiles,
		accounts:       service.NewAccountService(authSvc, profiles),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	s.unsubscribe = sessions.Subscribe(s.pushSession)

	s.app = fiber.New(fiber.Config{
		AppName: "LiftLog",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, e.Code, err, e.Message)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err), "Internal server error")
		},
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	return s, nil
}

// App exposes the configured Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span per request
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8080,http://127.0.0.1:8080"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application. Routes that need
// no visitor come first so the visitor middleware never runs for them.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(views.Static()),
		MaxAge: 3600,
	}))

	app.Use(s.VisitorMiddleware())

	// Session push
	app.Get("/ws/session", s.WebSocketUpgrade(), s.WebSocketSessionHandler())

	// JSON API
	api := app.Group("/api")
	api.Get("/session", s.GetSession)
	api.Post("/onboarding/dismiss", s.APIDismissOnboarding)

	authAPI := api.Group("/auth")
	authAPI.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.APISignUp)
	authAPI.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.APISignIn)
	authAPI.Post("/logout", s.APISignOut)

	templates := api.Group("/templates")
	templates.Get("/", s.ListTemplates)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	templates.Post("/:id/votes", middleware.RateLimit(
		s.redis, 30, time.Minute, "vote"), s.APIVote)
	templates.Get("/:id", s.GetTemplate)

	logs := api.Group("/logs", s.AuthRequired())
	logs.Get("/", s.ListLogs)
	logs.Post("/", middleware.RateLimit(
		s.redis, 20, time.Minute, "log_append"), s.APIAppendLog)

	api.All("/*", func(c *fiber.Ctx) error {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("route", c.Path()), "Not found")
	})

	// HTML pages
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.SignIn)
	app.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.SignUp)
	app.Post("/logout", s.SignOut)
	app.Post("/log", middleware.RateLimit(
		s.redis, 20, time.Minute, "log_append"), s.AppendLog)
	app.Post("/workout/:id/:kind", middleware.RateLimit(
		s.redis, 30, time.Minute, "vote"), s.Vote)
	app.Post("/catalog/seed", s.SeedCatalog)
	app.Post("/onboarding/:action", s.DismissOnboarding)

	// Every other GET resolves to a screen; unknown paths show the catalog.
	app.Get("/", s.Page)
	app.Get("/*", s.Page)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if s.stores.Ping == nil {
		storeStatus = "unavailable"
	} else if err := s.stores.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	// Redis is optional; without it the instance still serves.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// sessionEvent is the frame pushed to session sockets.
type sessionEvent struct {
	Type    string        `json:"type"`
	Session session.State `json:"session"`
}

func (s *Server) pushSession(visitor string, st session.State) {
	if s.hub.Connections(visitor) == 0 {
		return
	}
	payload, err := json.Marshal(sessionEvent{Type: "session", Session: st})
	if err != nil {
		middleware.Logger.Error("marshal session event", "error", err)
		return
	}
	s.hub.Broadcast(visitor, payload)
}

// Start wires the cross-instance relay and listens until the app is shut down.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	if s.notifier != nil {
		relay, err := notifications.StartRelay(ctx, s.notifier, s.auth)
		if err != nil {
			middleware.Logger.Warn("auth relay unavailable, sessions stay instance-local", "error", err)
		} else {
			s.relay = relay
		}
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "instance_id", s.auth.InstanceID())
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the relay goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	if s.relay != nil {
		s.relay.Stop()
	}

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		middleware.Logger.Error("error shutting down HTTP server", "error", err)
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down session hub", "error", err)
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	// Waits for background onboarding writes before the stores close.
	s.registry.Close()
	s.sessions.Close()

	if s.stores.Close != nil {
		if err := s.stores.Close(); err != nil {
			middleware.Logger.Error("error closing store", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", "error", err)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
