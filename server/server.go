// Package server exposes the auth services over HTTP through go-router's
// fiber adapter.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/middleware/jwtware"
)

// Config holds the HTTP facing settings
type Config struct {
	Name        string
	Version     string
	Env         string
	Development bool
	BodyLimit   int
	CORSOrigin  string
	// AccessLog enables the combined style request log
	AccessLog bool
	// UploadsDir is served under UploadsPrefix when set, for the local
	// logo storage.
	UploadsDir    string
	UploadsPrefix string
}

// Dependencies are the services the routes call into
type Dependencies struct {
	Repo      auth.RepositoryManager
	Tokens    jwtware.TokenVerifier
	Auth      *auth.AuthService
	Admins    *auth.PlatformAdminService
	Companies *auth.AdminCompanyService
	Profiles  *auth.CompanyProfileService
	Customers *auth.CustomerService
	Products  *auth.ProductService
	Logger    auth.Logger
}

// WireOptions carries the optional collaborators shared by the services
type WireOptions struct {
	Logger      auth.Logger
	Activity    auth.ActivitySink
	Throttle    auth.LoginThrottle
	Storage     auth.LogoStorage
	Hasher      auth.PasswordHasher
	PhoneRegion string
}

// Wire builds every service on top of one repository manager and token
// service.
func Wire(repo auth.RepositoryManager, tokens *auth.TokenService, opts WireOptions) Dependencies {
	log := opts.Logger
	if log == nil {
		log = auth.NoopLogger{}
	}
	activity := opts.Activity
	if activity == nil {
		activity = auth.LoggerActivitySink{Logger: log}
	}

	authService := auth.NewAuthService(repo, tokens).
		WithLogger(log).
		WithActivitySink(activity).
		WithLoginThrottle(opts.Throttle).
		WithPhoneRegion(opts.PhoneRegion)
	admins := auth.NewPlatformAdminService(repo, tokens).
		WithLogger(log).
		WithActivitySink(activity).
		WithLoginThrottle(opts.Throttle)
	if opts.Hasher != nil {
		authService.WithPasswordHasher(opts.Hasher)
		admins.WithPasswordHasher(opts.Hasher)
	}

	return Dependencies{
		Repo:   repo,
		Tokens: tokens,
		Auth:   authService,
		Admins: admins,
		Companies: auth.NewAdminCompanyService(repo).
			WithLogger(log).
			WithActivitySink(activity),
		Profiles: auth.NewCompanyProfileService(repo).
			WithLogger(log).
			WithLogoStorage(opts.Storage).
			WithPhoneRegion(opts.PhoneRegion),
		Customers: auth.NewCustomerService(repo).
			WithLogger(log).
			WithPhoneRegion(opts.PhoneRegion),
		Products: auth.NewProductService(repo).
			WithLogger(log),
		Logger: log,
	}
}

// RouteRegistrar is the part of router.Router the routes are mounted on
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Server owns the go-router fiber adapter
type Server struct {
	srv     router.Server[*fiber.App]
	cfg     Config
	deps    Dependencies
	started time.Time
	onError router.ErrorHandler
}

// New builds the app and registers every route
func New(cfg Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = auth.NoopLogger{}
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 10 * 1024 * 1024
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		started: time.Now(),
		onError: ErrorHandler(deps.Logger, cfg.Development),
	}

	s.srv = router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:               cfg.Name,
			BodyLimit:             cfg.BodyLimit,
			ErrorHandler:          FallbackErrorHandler(deps.Logger, cfg.Development),
			DisableStartupMessage: true,
		})

		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Development}))
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigin,
			AllowCredentials: cfg.CORSOrigin != "*",
		}))
		if cfg.AccessLog {
			app.Use(logger.New(logger.Config{
				Format:     "${ip} - - [${time}] \"${method} ${path} ${protocol}\" ${status} ${bytesSent} \"${referer}\" \"${ua}\"\n",
				TimeFormat: "02/Jan/2006:15:04:05 -0700",
			}))
		}
		if cfg.UploadsDir != "" && cfg.UploadsPrefix != "" {
			app.Static(cfg.UploadsPrefix, cfg.UploadsDir)
		}
		return app
	})

	s.routes(s.srv.Router())

	return s
}

// App returns the underlying fiber app, mostly for tests
func (s *Server) App() *fiber.App {
	return s.srv.WrappedRouter()
}

// Listen blocks serving on addr
func (s *Server) Listen(addr string) error {
	return s.srv.Serve(addr)
}

// Shutdown waits for in flight requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App().ShutdownWithContext(ctx)
}

// handle answers handler errors with the JSON error envelope
func (s *Server) handle(h router.HandlerFunc) router.HandlerFunc {
	return func(ctx router.Context) error {
		if err := h(ctx); err != nil {
			return s.onError(ctx, err)
		}
		return nil
	}
}

func (s *Server) routes(r router.Router[*fiber.App]) {
	health := &HealthController{
		db:      s.deps.Repo,
		started: s.started,
		name:    s.cfg.Name,
		version: s.cfg.Version,
		env:     s.cfg.Env,
	}
	r.Get("/health", s.handle(health.Health)).SetName("health")
	r.Get("/health/db", s.handle(health.Database)).SetName("health.db")

	api := r.Group("/api")
	api.Get("/version", s.handle(health.Version)).SetName("version")

	authenticate := jwtware.New(jwtware.Config{
		TokenVerifier: s.deps.Tokens,
		ErrorHandler:  s.onError,
	})
	companyUser := []router.MiddlewareFunc{authenticate, jwtware.RequireCompanyUser()}
	platformAdmin := []router.MiddlewareFunc{authenticate, jwtware.RequirePlatformAdmin()}
	tenant := []router.MiddlewareFunc{
		authenticate,
		jwtware.RequireCompanyUser(),
		jwtware.RequireApprovedCompany(),
		jwtware.ScopeToCompany(),
	}

	s.authRoutes(api.Group("/auth"), companyUser)
	s.adminAuthRoutes(api.Group("/admin/auth"), platformAdmin)
	s.adminCompanyRoutes(api.Group("/admin/companies"), platformAdmin)
	s.companyRoutes(api.Group("/company"), tenant)
	s.customerRoutes(api.Group("/customers"), tenant)
	s.productRoutes(api.Group("/products"), tenant)
}

func (s *Server) authRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &AuthController{service: s.deps.Auth}
	r.Post("/register-company", s.handle(c.RegisterCompany)).SetName("auth.register-company")
	r.Post("/login", s.handle(c.Login)).SetName("auth.login")
	r.Post("/refresh", s.handle(c.Refresh)).SetName("auth.refresh")
	r.Post("/logout", s.handle(c.Logout), gates...).SetName("auth.logout")
	r.Get("/me", s.handle(c.Me), gates...).SetName("auth.me")
}

func (s *Server) adminAuthRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &AdminAuthController{service: s.deps.Admins}
	r.Post("/login", s.handle(c.Login)).SetName("admin.auth.login")
	r.Post("/refresh", s.handle(c.Refresh)).SetName("admin.auth.refresh")
	r.Post("/logout", s.handle(c.Logout), gates...).SetName("admin.auth.logout")
	r.Get("/me", s.handle(c.Me), gates...).SetName("admin.auth.me")
}

func (s *Server) adminCompanyRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &AdminCompaniesController{service: s.deps.Companies}
	r.Get("/", s.handle(c.List), gates...).SetName("admin.companies.list")
	r.Get("/:companyId", s.handle(c.Detail), gates...).SetName("admin.companies.detail")
	r.Put("/:companyId/status", s.handle(c.UpdateStatus), gates...).SetName("admin.companies.status")
	r.Put("/:companyId/plan", s.handle(c.UpdatePlan), gates...).SetName("admin.companies.plan")
}

func (s *Server) companyRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &CompanyController{service: s.deps.Profiles}
	r.Get("/profile", s.handle(c.Profile), gates...).SetName("company.profile")
	r.Put("/profile", s.handle(c.UpdateProfile), gates...).SetName("company.profile.update")
	r.Post("/logo", s.handle(c.UploadLogo), gates...).SetName("company.logo")
}

func (s *Server) customerRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &CustomersController{service: s.deps.Customers}
	r.Get("/", s.handle(c.List), gates...).SetName("customers.list")
	r.Get("/:id", s.handle(c.Get), gates...).SetName("customers.get")
	r.Post("/", s.handle(c.Create), gates...).SetName("customers.create")
	r.Put("/:id", s.handle(c.Update), gates...).SetName("customers.update")
	r.Delete("/:id", s.handle(c.Delete), gates...).SetName("customers.delete")
}

func (s *Server) productRoutes(r RouteRegistrar, gates []router.MiddlewareFunc) {
	c := &ProductsController{service: s.deps.Products}
	r.Get("/", s.handle(c.List), gates...).SetName("products.list")
	r.Get("/:id", s.handle(c.Get), gates...).SetName("products.get")
	r.Post("/", s.handle(c.Create), gates...).SetName("products.create")
	r.Put("/:id", s.handle(c.Update), gates...).SetName("products.update")
	r.Delete("/:id", s.handle(c.Delete), gates...).SetName("products.delete")
}
