package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"jobboard/internal/auth"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/handler"
	"jobboard/internal/logger"
	"jobboard/internal/metrics"
	"jobboard/internal/model"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	User    *handler.UserHandler
	Auth    *handler.AuthHandler
	Company *handler.CompanyHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log zerolog.Logger,
	m *metrics.Metrics,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(m.Middleware())
	e.Use(logger.Middleware(log))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/users", h.User.CreateUser)

	authGroup := api.Group("/auth")
	public := authGroup.Group("")
	if cfg.AuthRate > 0 {
		public.Use(authRateLimiter(cfg.AuthRate))
	}
	public.POST("/login", h.Auth.Login)
	public.POST("/refresh", h.Auth.Refresh)

	requireAccess := []echo.MiddlewareFunc{
		auth.JWTMiddleware(jwtService),
		auth.RequireAccessToken(tokenStore),
	}
	authGroup.POST("/logout", h.Auth.Logout, requireAccess...)

	// Secured routes (require an access token)
	secured := api.Group("", requireAccess...)
	secured.GET("/me", h.Auth.Me)

	secured.GET("/users", h.User.ListUsers)
	secured.GET("/users/:id", h.User.GetUser)
	secured.PATCH("/users/:id", h.User.UpdateUser)
	secured.DELETE("/users/:id", h.User.DeleteUser)

	secured.GET("/companies/:id", h.Company.GetCompany)

	admin := secured.Group("/admin", auth.RequireRole(model.RoleAdmin))
	admin.POST("/users", h.User.CreateUserWithRole)
}

// authRateLimiter throttles credential endpoints per client IP.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(perSecond)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "unable to identify client",
				Code:  "FORBIDDEN",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many requests",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by the API.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
