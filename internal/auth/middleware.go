package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"jobboard/internal/errors"
	"jobboard/internal/model"
)

// contextKey is where echo-jwt stores the parsed *jwt.Token.
const contextKey = "user"

// JWTMiddleware validates the bearer token and stores typed Claims on the context.
func JWTMiddleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: jwtService.Secret(),
		ContextKey: contextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "missing or invalid token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// RequireAccessToken rejects refresh tokens and access tokens revoked by logout.
// It must run after JWTMiddleware.
func RequireAccessToken(store TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok || claims.TokenType != TokenTypeAccess {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "access token required",
					Code:  "UNAUTHORIZED",
				})
			}
			revoked, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "token has been revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}

// RequireRole allows the request only when the token carries one of roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "missing token",
					Code:  "UNAUTHORIZED",
				})
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "insufficient role",
				Code:  "FORBIDDEN",
			})
		}
	}
}

// ClaimsFrom returns the claims stored by JWTMiddleware.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	return claims, ok
}
