package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faithadeola/TrustRail/internal/auth"
)

func RequireAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(auth.AccessCookieName)
		if err != nil || cookie.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := jwt.Parse(cookie.Value)
		if err != nil || claims.Type != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("business_id", claims.BusinessID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// BusinessID returns the authenticated caller's business scope.
func BusinessID(c *gin.Context) string {
	v, ok := c.Get("business_id")
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
