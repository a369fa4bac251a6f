package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

// currentClaims returns the token claims attached by the JWT middleware.
func currentClaims(c *gin.Context) (*models.JWTClaims, error) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}

// idParam parses the numeric :id path segment.
func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be an integer")
	}
	return id, nil
}

// pageParams reads page and limit, defaulting to the first page of ten.
// Non-numeric values fall back to the defaults; non-positive values pass
// through so storage can reject them.
func pageParams(c *gin.Context) (int, int) {
	page := 1
	limit := 10
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		limit = v
	}
	return page, limit
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// floatQuery parses an optional float query parameter.
func floatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
