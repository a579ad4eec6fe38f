package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/walidfaroukPRO/olivegardens-backend/docs"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/handler"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/middleware"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when the in-process auth store is configured.
func NewRouter(db *mongo.Database, rdb *redis.Client, authService ports.AuthService, users ports.UserRepository, authn *middleware.Authenticator, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("olivegardens"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(users, log)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authn.Authenticate())
	auth.GET("/me", authHandler.Me, authn.Authenticate())

	// --- Admin routes (role-gated) ---
	admin := e.Group("/admin", authn.Authenticate(), middleware.RequireRole(log, domain.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.PATCH("/users/:id/role", userHandler.UpdateRole)
	admin.PATCH("/users/:id/active", userHandler.SetActive)

	// --- Observability and docs (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
