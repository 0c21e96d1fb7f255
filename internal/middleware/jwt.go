package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planlane/planlane/internal/resputil"
	"github.com/planlane/planlane/internal/util"
)

// AuthProtected authenticates the request from the session cookie,
// falling back to an Authorization: Bearer header for non-browser
// clients, and injects the identity into the gin context.
func AuthProtected() gin.HandlerFunc {
	return func(c *gin.Context) {
		authToken, err := c.Cookie(util.SessionCookie)
		if err != nil || authToken == "" {
			authHeader := c.Request.Header.Get("Authorization")
			t := strings.Split(authHeader, " ")
			if len(t) < 2 || t[0] != "Bearer" {
				resputil.Unauthorized(c, "authentication required")
				c.Abort()
				return
			}
			authToken = t[1]
		}

		token, err := util.GetTokenMgr().CheckToken(authToken)
		if err != nil {
			resputil.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}

		util.SetJWTContext(c, token)
		c.Next()
	}
}

// AuthAdmin requires the platform admin role. Must run after
// AuthProtected.
func AuthAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.GetToken(c)
		if !token.IsAdmin() {
			resputil.Forbidden(c, "administrator role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
