package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/response"
)

// RequireRoles allows only callers holding one of the listed roles. A caller
// who never authenticated gets a 401; an authenticated caller outside the
// set gets a 403. Self-service routes never go through here: they derive the
// target from the token, not from a path parameter.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
