package middleware

import (
	"strings"

	"github.com/docvault/docvault/internal/pkg"

	"github.com/gin-gonic/gin"
)

// Auth validates the owner's bearer token and stores the user ID in the
// request context. Visitor-facing endpoints never pass through this.
func Auth(jwtManager *pkg.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			pkg.UnauthorizedResponse(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			pkg.UnauthorizedResponse(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			if appErr, ok := pkg.IsAppError(err); ok {
				pkg.ErrorResponseFromAppError(c, appErr)
			} else {
				pkg.UnauthorizedResponse(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
