package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/service"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/response"
)

const maxProfilePictureBytes = 5 << 20

// UserHandler exposes account management endpoints. Admin routes address
// users by id; self-service routes derive the target from the token.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param name query string false "Name fragment"
// @Param email query string false "Email fragment"
// @Param role query string false "Exact role"
// @Param graduated query bool false "Graduation filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Name:      strings.TrimSpace(c.Query("name")),
		Email:     strings.TrimSpace(c.Query("email")),
		Role:      strings.TrimSpace(c.Query("role")),
		Graduated: boolQuery(c, "graduated"),
	}
	filter.Page, filter.Limit = pageParams(c)

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "users retrieved", users, pagination)
}

// Get godoc
// @Summary Get one user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user retrieved", user)
}

// Create godoc
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "user created", user)
}

// Update godoc
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body service.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user updated", user)
}

// Delete godoc
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "user deleted", user)
}

// Me godoc
// @Summary Get the authenticated profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	claims, err := currentClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), claims.UserID())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "profile retrieved", user)
}

// UpdateMe godoc
// @Summary Update the authenticated profile
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.UpdateUserRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	claims, err := currentClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "profile updated", user)
}

// UploadPicture godoc
// @Summary Upload the authenticated profile picture
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param picture formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me/picture [post]
func (h *UserHandler) UploadPicture(c *gin.Context) {
	claims, err := currentClaims(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "picture file is required"))
		return
	}
	if fileHeader.Size > maxProfilePictureBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "picture exceeds the 5MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProfilePictureBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	user, err := h.users.UpdateProfilePicture(c.Request.Context(), claims.UserID(), fileHeader.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "picture updated", user)
}
