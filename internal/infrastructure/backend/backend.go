// Package backend is an in-process rendition of the order management API the
// console talks to. It serves the same envelope, auth protocol, and endpoints
// as the production deployment, backed by in-memory state, and doubles as the
// integration-test fixture and the `orderdesk devserver` command.
package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// Options configures a dev backend instance.
type Options struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// SeedOrders is the number of orders preloaded at startup.
	SeedOrders int
	// Seed drives the order simulator. Zero picks a time-based seed.
	Seed   uint64
	Logger zerolog.Logger
}

// Server is the dev backend: an Echo app over the in-memory store.
type Server struct {
	opts  Options
	store *store
	sim   *simulator
	echo  *echo.Echo
	log   zerolog.Logger
}

// Seeded accounts. The super admin is created on startup the same way the
// production deployment provisions its first operator.
const (
	SeedAdminEmail    = "admin@orderdesk.io"
	SeedAdminPassword = "changeme123"
)

// New builds a ready-to-serve backend with routes registered and seed data
// loaded.
func New(opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev-only-secret"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	s := &Server{
		opts:  opts,
		store: newStore(),
		sim:   newSimulator(opts.Seed),
		log:   opts.Logger,
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	s.echo = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(s.log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	// Per-instance registry so tests can spin up multiple servers without
	// duplicate-collector panics.
	registry := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "orderdesk_backend",
		Registerer: registry,
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: registry,
	}))

	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/refresh", s.handleRefresh)
	e.POST("/auth/logout", s.handleLogout)

	authed := e.Group("", authMiddleware(s.opts.JWTSecret))

	orders := authed.Group("/orders")
	orders.GET("", s.handleListOrders)
	orders.GET("/stats", s.handleStats)
	orders.GET("/:id", s.handleGetOrder)
	orders.PUT("/:id/status", s.handleUpdateStatus,
		requireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

	admin := authed.Group("/admin", requireRole(domain.RoleSuperAdmin))
	admin.GET("/feature-flags", s.handleListFlags)
	admin.PUT("/feature-flags/:key", s.handleToggleFlag)
	admin.POST("/sync-channels", s.handleSyncChannels)

	return e
}

// seed provisions the first super admin, default feature flags, and the
// initial order book.
func (s *Server) seed() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.store.createUser(&user{
		ID:           "00000000-0000-0000-0000-000000000001",
		Email:        SeedAdminEmail,
		FullName:     "Seed Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		CreatedAt:    time.Now().UTC(),
	})

	defaults := []domain.FeatureFlag{
		{ID: "flag-auto-sync", FlagKey: "channel.auto_sync", Enabled: true,
			Description: "Pull channel orders on a schedule"},
		{ID: "flag-notifications", FlagKey: "orders.status_notifications", Enabled: false,
			Description: "Email customers on status changes"},
		{ID: "flag-returns", FlagKey: "orders.self_service_returns", Enabled: false,
			Description: "Expose the returns flow on the storefront"},
	}
	now := time.Now().UTC()
	for i := range defaults {
		defaults[i].UpdatedAt = now
		flag := defaults[i]
		s.store.putFlag(&flag)
	}

	if s.opts.SeedOrders > 0 {
		s.seedOrders(s.opts.SeedOrders)
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("dev backend listening")
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// CreateUser provisions an account with an explicit role. Elevated accounts
// are created here (or via seed), never through the public register endpoint.
func (s *Server) CreateUser(email, password, fullName string, role domain.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if !s.store.createUser(&user{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}) {
		return domain.ErrEmailTaken
	}
	return nil
}
