package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
	"github.com/iqmalr/test-bursa-efek/internal/database/service"
)

// CategoryHandler handles HTTP requests for product categories
type CategoryHandler struct {
	service service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger,
	}
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// List handles GET /api/category-products
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.ListCategories()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Categories retrieved successfully"
	if len(categories) == 0 {
		message = "No categories found"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
		"data":    categories,
	})
}

// Create handles POST /api/category-products
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid category request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "The name field is required and must be at most 255 characters.",
		})
		return
	}

	category, err := h.service.CreateCategory(req.Name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Category created successfully",
		"data":    category,
	})
}

// Get handles GET /api/category-products/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	category, err := h.service.GetCategory(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Category retrieved successfully",
		"data":    category,
	})
}

// Update handles PUT /api/category-products/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid category request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "The name field is required and must be at most 255 characters.",
		})
		return
	}

	category, err := h.service.UpdateCategory(id, req.Name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Category updated successfully",
		"data":    category,
	})
}

// Delete handles DELETE /api/category-products/:id (soft delete)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	deletedAt, err := h.service.SoftDeleteCategory(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Category soft deleted successfully",
		"deleted_at": deletedAt,
	})
}

// Restore handles PATCH /api/category-products/:id/restore
func (h *CategoryHandler) Restore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	category, err := h.service.RestoreCategory(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Category not found or not deleted",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Category restored successfully",
		"data":    category,
	})
}

func (h *CategoryHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid category id",
		})
		return 0, false
	}
	return uint(id), true
}

// handleServiceError maps service errors to HTTP responses
func (h *CategoryHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Category not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
	}
}
