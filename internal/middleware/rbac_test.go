package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
)

func roleRouter(claims *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin",
		func(c *gin.Context) {
			if claims != nil {
				c.Set(ContextUserKey, claims)
			}
		},
		RequireRoles(roles...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	return w
}

func TestRequireRolesUnauthenticatedGets401(t *testing.T) {
	r := roleRouter(nil, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, hit(r).Code)
}

func TestRequireRolesWrongRoleGets403(t *testing.T) {
	r := roleRouter(&models.JWTClaims{Role: models.RoleStudent}, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, hit(r).Code)
}

func TestRequireRolesMatchingRolePasses(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleTeacher} {
		r := roleRouter(&models.JWTClaims{Role: role}, models.RoleAdmin, models.RoleTeacher)
		require.Equal(t, http.StatusOK, hit(r).Code, role)
	}
}
