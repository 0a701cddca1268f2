// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zapcatalog/zapcatalog-backend/internal/config"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

const authCookieName = "zc_token"

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie browsers carry on navigation requests.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(authCookieName)
	if err != nil {
		return ""
	}
	return cookie
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "authentication required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_type", claims.UserType)
		c.Next()
	}
}

func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("user_type")
		if !exists || userType != string(models.UserTypeOwner) {
			utils.ForbiddenResponse(c, "owner access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_type", claims.UserType)
		c.Next()
	}
}

// RouteGuard handles browser navigation between the login page and the
// dashboard. An unauthenticated dashboard request is redirected to login
// with the original path preserved in a redirect query; a logged-in user
// landing on the login page is sent straight to the dashboard.
func RouteGuard(cfg *config.Config) gin.HandlerFunc {
	loginPath := cfg.Frontend.LoginPath
	dashboardPath := cfg.Frontend.DashboardPath

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		authenticated := false
		if token := tokenFromRequest(c); token != "" {
			if _, err := utils.ValidateJWT(token); err == nil {
				authenticated = true
			}
		}

		switch {
		case strings.HasPrefix(path, dashboardPath) && !authenticated:
			target := loginPath + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return

		case path == loginPath && authenticated:
			c.Redirect(http.StatusFound, dashboardPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
