package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session token from the auth cookie, or a
// Bearer header for API clients, and stores the caller on the context.
func AuthMiddleware(tokens *auth.TokenManager, logger utils.Logger) gin.HandlerFunc {
	log := logger.With("middleware", "AuthMiddleware")
	return func(c *gin.Context) {
		claims, err := tokens.Parse(extractToken(c))
		if err != nil {
			code := "malformed"
			switch {
			case errors.Is(err, auth.ErrTokenMissing):
				code = "missing"
			case errors.Is(err, auth.ErrTokenExpired):
				code = "expired"
			default:
				log.Debug("Rejected session token", "error", err, "path", c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
				Code:    code,
			})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// CORSMiddleware allows the configured frontends to send the session cookie.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature", utils.RequestIDHeader},
		ExposeHeaders:    []string{utils.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})
}
