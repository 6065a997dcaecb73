package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/Berytech/Investment-Platform/internal/response"
)

// AdminKeyHeader is the header carrying the shared admin key
const AdminKeyHeader = "X-Admin-Key"

// AdminKey gates a route group behind a shared admin key. Comparison is
// constant time.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(AdminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			response.Forbidden(c, "Invalid admin key")
			c.Abort()
			return
		}
		c.Next()
	}
}
