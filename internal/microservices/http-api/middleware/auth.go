package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/service"
	"eventhub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// Authenticator resolves a session token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the auth cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware is a Gin middleware that authenticates the request and stores
// the account and token claims in the context for handlers to use.
func AuthMiddleware(authenticator Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, claims, err := authenticator.Authenticate(ctx, TokenFromRequest(c, cookieName))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole passes when the caller has requiredRole. Admins pass every role check.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, service.ErrNoToken)
			return
		}
		if user.Role != requiredRole && !user.IsAdmin() {
			abort(c, service.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// CurrentUser returns the authenticated account or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentClaims returns the claims of the token the request was authenticated with.
func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Error()
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, service.ErrForbidden):
			status = http.StatusForbidden
		default:
			status = http.StatusBadRequest
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
