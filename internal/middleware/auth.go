package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/service/auth"
)

const (
	SessionCookieName = "session"
	ContextRole       = "admin_role"
)

// SessionAuth validates the session token from the cookie or the
// Authorization header and stores the admin role on the context.
func SessionAuth(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "authentication required",
			})
			return
		}

		role, err := authSvc.ValidateSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "invalid or expired session",
			})
			return
		}

		c.Set(ContextRole, role)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

// RoleFromContext returns the role set by SessionAuth, empty outside it.
func RoleFromContext(c *gin.Context) model.AdminRole {
	if role, exists := c.Get(ContextRole); exists {
		if r, ok := role.(model.AdminRole); ok {
			return r
		}
	}
	return ""
}
