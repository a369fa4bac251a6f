package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/service"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/response"
)

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	courses, pagination, err := h.courses.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "courses retrieved", courses, pagination)
}

// Search godoc
// @Summary Search courses
// @Tags Courses
// @Produce json
// @Param title query string false "Title fragment"
// @Param instructor query string false "Instructor fragment"
// @Param category query string false "Category fragment"
// @Param level query string false "Exact level"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param isActive query bool false "Active filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses/search [get]
func (h *CourseHandler) Search(c *gin.Context) {
	filter := models.CourseFilter{
		Title:      strings.TrimSpace(c.Query("title")),
		Instructor: strings.TrimSpace(c.Query("instructor")),
		Category:   strings.TrimSpace(c.Query("category")),
		Level:      strings.TrimSpace(c.Query("level")),
		MinPrice:   floatQuery(c, "minPrice"),
		MaxPrice:   floatQuery(c, "maxPrice"),
		IsActive:   boolQuery(c, "isActive"),
	}
	filter.Page, filter.Limit = pageParams(c)

	courses, pagination, err := h.courses.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "courses retrieved", courses, pagination)
}

// Get godoc
// @Summary Get one course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "course retrieved", course)
}

// Create godoc
// @Summary Create a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "course created", course)
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "course updated", course)
}

// UpdateParticipants godoc
// @Summary Set the enrollment counter
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.UpdateParticipantsRequest true "Participants payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/participants [patch]
func (h *CourseHandler) UpdateParticipants(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.UpdateParticipants(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "participants updated", course)
}

// UpdateStatus godoc
// @Summary Toggle course activation
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body service.UpdateCourseStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/status [patch]
func (h *CourseHandler) UpdateStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "status updated", course)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "course deleted", course)
}

// Categories godoc
// @Summary List course categories
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/categories [get]
func (h *CourseHandler) Categories(c *gin.Context) {
	categories, err := h.courses.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "categories retrieved", categories)
}
