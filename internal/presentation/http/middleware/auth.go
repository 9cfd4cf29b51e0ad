package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware. The token's firm
// claim becomes the firm context of the request.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("firm_id", claims.FirmID)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
