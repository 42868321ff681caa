package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
	"github.com/iqmalr/test-bursa-efek/internal/database/service"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

type CreateProductRequest struct {
	ProductCategoryID uint   `form:"product_category_id" binding:"required"`
	Name              string `form:"name" binding:"required,max=255"`
	Price             string `form:"price" binding:"required"`
}

type UpdateProductRequest struct {
	ProductCategoryID *uint   `form:"product_category_id"`
	Name              *string `form:"name" binding:"omitempty,max=255"`
	Price             *string `form:"price"`
}

// List handles GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.service.ListProducts()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Products retrieved successfully"
	if len(products) == 0 {
		message = "No products found"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
		"data":    products,
	})
}

// Create handles POST /api/products (multipart, image required)
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid product request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "The product_category_id, name and price fields are required.",
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid price format",
		})
		return
	}

	image, file, ok := h.openImage(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	product, err := h.service.CreateProduct(service.CreateProductInput{
		CategoryID: req.ProductCategoryID,
		Name:       req.Name,
		Price:      price,
		Image:      image,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Product created successfully",
		"data":    product,
	})
}

// Get handles GET /api/products/:uuid
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.service.GetProduct(c.Param("uuid"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// Update handles PUT /api/products/:uuid (multipart, all fields optional)
func (h *ProductHandler) Update(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid product request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid product payload",
		})
		return
	}

	input := service.UpdateProductInput{
		CategoryID: req.ProductCategoryID,
		Name:       req.Name,
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid price format",
			})
			return
		}
		input.Price = &price
	}

	image, file, ok := h.openImage(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}
	input.Image = image

	product, err := h.service.UpdateProduct(c.Param("uuid"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Product updated successfully",
		"data":    product,
	})
}

// Delete handles DELETE /api/products/:uuid (soft delete)
func (h *ProductHandler) Delete(c *gin.Context) {
	deletedAt, err := h.service.SoftDeleteProduct(c.Param("uuid"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Product soft deleted successfully",
		"deleted_at": deletedAt,
	})
}

// Restore handles PATCH /api/products/:uuid/restore
func (h *ProductHandler) Restore(c *gin.Context) {
	product, err := h.service.RestoreProduct(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Product not found or not deleted",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Product restored successfully",
		"data":    product,
	})
}

// openImage extracts the optional multipart image field. The service
// decides whether a missing image is an error (required on create,
// optional on update).
func (h *ProductHandler) openImage(c *gin.Context) (*service.ImageUpload, multipart.File, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil, true
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("❌ [Handler] Failed to open uploaded image", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Failed to read uploaded image",
		})
		return nil, nil, false
	}

	return &service.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}, file, true
}

// handleServiceError maps service errors to HTTP responses
func (h *ProductHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Product not found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		// A missing category reference is a validation failure on the
		// product payload, not a 404 on the product route
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Category not found"})
	case errors.Is(err, service.ErrImageRequired):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "The image field is required."})
	case errors.Is(err, service.ErrInvalidImageType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "message": "The image must be a file of type: jpg, jpeg, png."})
	case errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "message": "The image may not be greater than 2048 kilobytes."})
	case errors.Is(err, service.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "The price must be at least 0."})
	case errors.Is(err, service.ErrImageUpload):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Failed to store image"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
	}
}
