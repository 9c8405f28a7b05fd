package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"localmart/internal/catalog"
	"localmart/internal/marketerrors"
	"localmart/internal/models"
	"localmart/utils"

	"github.com/gin-gonic/gin"
)

// userContextKey is where the auth middleware stores the verified user.
const userContextKey = "localmart.user"

// SetUser attaches the verified user to the request context.
func SetUser(c *gin.Context, user models.User) {
	c.Set(userContextKey, user)
}

// UserFromContext returns the verified user, if any.
func UserFromContext(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, marketerrors.ErrNotOwner):
		return http.StatusForbidden, "listing belongs to another user"
	case errors.Is(err, marketerrors.ErrPermission):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, marketerrors.ErrInvalidItem):
		return http.StatusBadRequest, "invalid listing details"
	case errors.Is(err, marketerrors.ErrInvalidQuery), errors.Is(err, marketerrors.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, marketerrors.ErrTransport):
		return http.StatusBadGateway, "backend unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ParseListingFilter extracts listing query parameters from the request.
func ParseListingFilter(c *gin.Context) catalog.ListingFilter {
	f := catalog.ListingFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("q"),
		SortBy:   c.Query("sort"),
		Cursor:   c.Query("cursor"),
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 {
		f.PageSize = v
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	return f
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
