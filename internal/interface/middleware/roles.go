package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/pkg/response"
)

// RequireRole allows the request through only when the authenticated user
// carries one of the given roles. Must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := entity.Role(c.GetString(CtxUserRoleKey))
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "insufficient permissions", nil)
		c.Abort()
	}
}
