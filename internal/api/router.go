package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/vendorhub/marketplace-auth/docs"
	"github.com/vendorhub/marketplace-auth/internal/api/handler"
	"github.com/vendorhub/marketplace-auth/internal/api/middleware"
	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
	"github.com/vendorhub/marketplace-auth/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Auth       ports.AuthService
	Directory  ports.DirectoryService
	Dispatcher handler.EventDispatcher
	Mongo      *mongo.Database
	Redis      *redis.Client
	JWTSecret  string
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace_auth"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Directory)
	sessionHandler := handler.NewSessionHandler(deps.Auth, deps.Dispatcher)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes (the old serverless function surface) ---
	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/verify-pin", authHandler.VerifyPin)
	e.POST("/v1/auth/reset-password", authHandler.ResetPassword)
	e.POST("/v1/auth/logout", authHandler.Logout)
	e.POST("/v1/auth/verify-email", authHandler.VerifyEmail)
	e.POST("/v1/auth/resend-verification", authHandler.ResendVerification)
	e.GET("/v1/auth/oauth/:provider", sessionHandler.StartOAuth)

	// --- Session resolution ---
	e.POST("/v1/session/resolve", sessionHandler.Resolve)
	e.POST("/v1/session/events", sessionHandler.ReceiveEvent)
	e.GET("/v1/session", sessionHandler.Current, authMiddleware)

	// --- Role-gated routes mirroring the dashboard policy ---
	e.GET("/v1/dashboard/client", dashboardOK, authMiddleware, middleware.RBAC(domain.RoleClient))
	e.GET("/v1/dashboard/vendor", dashboardOK, authMiddleware, middleware.RBAC(domain.RoleVendor))
	e.GET("/v1/admin", dashboardOK, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}

func dashboardOK(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
