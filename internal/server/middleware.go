package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"localmart/internal/backend"
	"localmart/services/market/helpers"
	"localmart/utils"

	"github.com/gin-gonic/gin"
)

var errMissingToken = errors.New("missing bearer token")

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthMiddleware resolves the bearer token through the identity provider and
// attaches the verified user to the request context. Requests without a
// valid token are rejected; sign-in itself is an external flow.
func AuthMiddleware(identity backend.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			utils.JSONError(c, http.StatusUnauthorized, errMissingToken, "authentication required")
			c.Abort()
			return
		}

		user, err := identity.Verify(c.Request.Context(), token)
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			if status == http.StatusForbidden {
				status = http.StatusUnauthorized
			}
			utils.JSONError(c, status, err, message)
			utils.Warn("AuthMiddleware: token rejected", map[string]any{"error": err.Error()})
			c.Abort()
			return
		}

		helpers.SetUser(c, user)
		c.Next()
	}
}
