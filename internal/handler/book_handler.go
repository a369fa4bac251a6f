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

// BookHandler exposes book catalog endpoints.
type BookHandler struct {
	books  *service.BookService
	export *service.ExportService
}

// NewBookHandler constructs BookHandler.
func NewBookHandler(books *service.BookService, export *service.ExportService) *BookHandler {
	return &BookHandler{books: books, export: export}
}

// List godoc
// @Summary List books
// @Tags Books
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	books, pagination, err := h.books.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "books retrieved", books, pagination)
}

// Search godoc
// @Summary Search books
// @Tags Books
// @Produce json
// @Param title query string false "Title fragment"
// @Param author query string false "Author fragment"
// @Param category query string false "Category fragment"
// @Param isbn query string false "ISBN fragment"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param isActive query bool false "Active filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /books/search [get]
func (h *BookHandler) Search(c *gin.Context) {
	filter := models.BookFilter{
		Title:    strings.TrimSpace(c.Query("title")),
		Author:   strings.TrimSpace(c.Query("author")),
		Category: strings.TrimSpace(c.Query("category")),
		ISBN:     strings.TrimSpace(c.Query("isbn")),
		MinPrice: floatQuery(c, "minPrice"),
		MaxPrice: floatQuery(c, "maxPrice"),
		IsActive: boolQuery(c, "isActive"),
	}
	filter.Page, filter.Limit = pageParams(c)

	books, pagination, err := h.books.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "books retrieved", books, pagination)
}

// Get godoc
// @Summary Get one book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	book, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book retrieved", book)
}

// Create godoc
// @Summary Create a book
// @Tags Books
// @Accept json
// @Produce json
// @Param payload body service.CreateBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req service.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	book, err := h.books.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "book created", book)
}

// Update godoc
// @Summary Update a book
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param payload body service.UpdateBookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	book, err := h.books.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book updated", book)
}

// UpdateStock godoc
// @Summary Set book stock
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param payload body service.UpdateStockRequest true "Stock payload"
// @Success 200 {object} response.Envelope
// @Router /books/{id}/stock [patch]
func (h *BookHandler) UpdateStock(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	book, err := h.books.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "stock updated", book)
}

// Delete godoc
// @Summary Deactivate a book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	book, err := h.books.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "book deactivated", book)
}

// Categories godoc
// @Summary List book categories
// @Tags Books
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /books/categories [get]
func (h *BookHandler) Categories(c *gin.Context) {
	categories, err := h.books.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "categories retrieved", categories)
}

// Stats godoc
// @Summary Catalog statistics
// @Tags Books
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /books/stats [get]
func (h *BookHandler) Stats(c *gin.Context) {
	stats, err := h.books.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "stats retrieved", stats)
}

// Export godoc
// @Summary Export the catalog
// @Tags Books
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /books/export [get]
func (h *BookHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	file, err := h.export.ExportBooks(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
