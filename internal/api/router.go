package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"github.com/uptrace/bun"

	"github.com/acctbase/account-service/internal/api/handler"
	"github.com/acctbase/account-service/internal/api/middleware"
	"github.com/acctbase/account-service/internal/core/service"
	"github.com/acctbase/account-service/internal/infrastructure/config"
	"github.com/acctbase/account-service/internal/infrastructure/db/postgres"
	"github.com/acctbase/account-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *bun.DB, rdb *goredis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(db)
	hasher := service.NewPasswordHasher()
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	limiter := redis.NewLoginLimiter(rdb)

	userService := service.NewUserService(userRepo, hasher, log)
	authService := service.NewAuthService(userRepo, tokens, hasher, limiter, log)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	authRequired := middleware.Auth(tokens, userRepo)
	superuserOnly := middleware.RequireSuperuser()

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// --- User routes ---
	users := e.Group("/api/users")
	users.POST("", userHandler.Register)
	users.GET("/me", userHandler.Me, authRequired)
	users.GET("/:id", userHandler.Get, authRequired)
	users.GET("", userHandler.List, authRequired, superuserOnly)
	users.PATCH("/:id", userHandler.Update, authRequired)
	users.DELETE("/:id", userHandler.Delete, authRequired, superuserOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
