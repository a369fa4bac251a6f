package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/service"
	"github.com/noah-isme/elearn-api/internal/store"
	"github.com/noah-isme/elearn-api/pkg/export"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type testEnv struct {
	router *gin.Engine
	auth   *service.AuthService
	users  *store.UserStore
}

// stubStorage keeps uploaded files in memory and hands back fake URLs.
type stubStorage struct {
	saved   []string
	deleted []string
}

func (s *stubStorage) Save(folder, originalName string, data []byte) (string, error) {
	url := "/uploads/" + folder + "/" + originalName
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *stubStorage) Delete(publicURL string) error {
	s.deleted = append(s.deleted, publicURL)
	return nil
}

// newTestEnv wires the full route table against in-memory stores so tests
// exercise the same auth gates the server runs.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validate := validator.New()
	logr := zap.NewNop()

	books := store.NewBookStore()
	courses := store.NewCourseStore()
	users := store.NewUserStore()

	authService := service.NewAuthService(users, validate, logr, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "elearn-api",
	})
	bookService := service.NewBookService(books, nil, time.Minute, validate, logr)
	courseService := service.NewCourseService(courses, nil, time.Minute, validate, logr)
	userService := service.NewUserService(users, &stubStorage{}, validate, logr)
	exportService := service.NewExportService(bookService, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := NewAuthHandler(authService)
	bookHandler := NewBookHandler(bookService, exportService)
	courseHandler := NewCourseHandler(courseService)
	userHandler := NewUserHandler(userService)

	authRequired := middleware.JWT(authService)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	r := gin.New()
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	bookRoutes := api.Group("/books")
	bookRoutes.GET("", bookHandler.List)
	bookRoutes.GET("/search", bookHandler.Search)
	bookRoutes.GET("/categories", bookHandler.Categories)
	bookRoutes.GET("/:id", bookHandler.Get)
	bookRoutes.GET("/stats", authRequired, staff, bookHandler.Stats)
	bookRoutes.GET("/export", authRequired, staff, bookHandler.Export)
	bookRoutes.POST("", authRequired, adminOnly, bookHandler.Create)
	bookRoutes.PUT("/:id", authRequired, adminOnly, bookHandler.Update)
	bookRoutes.PATCH("/:id/stock", authRequired, staff, bookHandler.UpdateStock)
	bookRoutes.DELETE("/:id", authRequired, adminOnly, bookHandler.Delete)

	courseRoutes := api.Group("/courses")
	courseRoutes.GET("", courseHandler.List)
	courseRoutes.GET("/search", courseHandler.Search)
	courseRoutes.GET("/categories", courseHandler.Categories)
	courseRoutes.GET("/:id", courseHandler.Get)
	courseRoutes.POST("", authRequired, staff, courseHandler.Create)
	courseRoutes.PUT("/:id", authRequired, staff, courseHandler.Update)
	courseRoutes.PATCH("/:id/participants", authRequired, staff, courseHandler.UpdateParticipants)
	courseRoutes.PATCH("/:id/status", authRequired, staff, courseHandler.UpdateStatus)
	courseRoutes.DELETE("/:id", authRequired, adminOnly, courseHandler.Delete)

	userRoutes := api.Group("/users", authRequired)
	userRoutes.GET("/me", userHandler.Me)
	userRoutes.PUT("/me", userHandler.UpdateMe)
	userRoutes.POST("/me/picture", userHandler.UploadPicture)
	userRoutes.GET("", adminOnly, userHandler.List)
	userRoutes.POST("", adminOnly, userHandler.Create)
	userRoutes.GET("/:id", adminOnly, userHandler.Get)
	userRoutes.PUT("/:id", adminOnly, userHandler.Update)
	userRoutes.DELETE("/:id", adminOnly, userHandler.Delete)

	return &testEnv{router: r, auth: authService, users: users}
}

// tokenFor seeds an account with the given role and returns a valid token.
func (e *testEnv) tokenFor(t *testing.T, role models.UserRole) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:         string(role) + " user",
		Email:        string(role) + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, _, err := e.auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}
