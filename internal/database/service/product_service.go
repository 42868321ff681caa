package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iqmalr/test-bursa-efek/internal/config"
	"github.com/iqmalr/test-bursa-efek/internal/database/models"
	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
	"github.com/iqmalr/test-bursa-efek/internal/storage"
)

// ImageUpload describes an uploaded image file before it is stored
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// CreateProductInput carries all fields required to create a product
type CreateProductInput struct {
	CategoryID uint
	Name       string
	Price      decimal.Decimal
	Image      *ImageUpload
}

// UpdateProductInput carries a partial update; nil fields are left unchanged
type UpdateProductInput struct {
	CategoryID *uint
	Name       *string
	Price      *decimal.Decimal
	Image      *ImageUpload
}

// ProductService defines the interface for product business logic.
// Creation stores the image before the row is written, so a storage
// failure aborts with no partial state; a row-insert failure removes the
// file again. The file write and the insert are still two operations, not
// a transaction, so a crash in between can orphan a file on disk.
type ProductService interface {
	CreateProduct(input CreateProductInput) (*models.Product, error)
	ListProducts() ([]models.Product, error)
	GetProduct(id string) (*models.Product, error)
	UpdateProduct(id string, input UpdateProductInput) (*models.Product, error)
	SoftDeleteProduct(id string) (time.Time, error)
	RestoreProduct(id string) (*models.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	imageStore   storage.ImageStore
	cfg          *config.Config
	logger       *slog.Logger
}

// NewProductService creates a new product service instance
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	imageStore storage.ImageStore,
	cfg *config.Config,
	logger *slog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		imageStore:   imageStore,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *productService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	s.logger.Info("📦 [ProductService] Creating product",
		"name", input.Name,
		"category_id", input.CategoryID,
	)

	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	// Referential integrity is checked at write time against live categories
	exists, err := s.categoryRepo.Exists(input.CategoryID)
	if err != nil {
		s.logger.Error("❌ [ProductService] Failed to check category", "category_id", input.CategoryID, "error", err)
		return nil, err
	}
	if !exists {
		s.logger.Warn("⚠️ [ProductService] Category does not exist", "category_id", input.CategoryID)
		return nil, repository.ErrCategoryNotFound
	}

	if input.Image == nil {
		return nil, ErrImageRequired
	}
	if err := s.validateImage(input.Image); err != nil {
		return nil, err
	}

	// Store the file first; nothing is persisted if the upload fails
	imagePath, err := s.storeImage(input.Image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:                uuid.NewString(),
		ProductCategoryID: input.CategoryID,
		Name:              input.Name,
		Price:             input.Price,
		Image:             imagePath,
	}

	if err := s.productRepo.Create(product); err != nil {
		// Clean up the stored file on database error
		s.imageStore.Remove(imagePath)
		s.logger.Error("❌ [ProductService] Failed to create product record", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [ProductService] Product created successfully",
		"product_id", product.ID,
		"image", imagePath,
	)

	return product, nil
}

func (s *productService) ListProducts() ([]models.Product, error) {
	return s.productRepo.List()
}

func (s *productService) GetProduct(id string) (*models.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *productService) UpdateProduct(id string, input UpdateProductInput) (*models.Product, error) {
	s.logger.Info("📦 [ProductService] Updating product", "product_id", id)

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		exists, err := s.categoryRepo.Exists(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			s.logger.Warn("⚠️ [ProductService] Category does not exist", "category_id", *input.CategoryID)
			return nil, repository.ErrCategoryNotFound
		}
		product.ProductCategoryID = *input.CategoryID
	}

	if input.Name != nil {
		product.Name = *input.Name
	}

	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		product.Price = *input.Price
	}

	// Replace the image by writing the new file first and deleting the old
	// one only after the row is saved, so a failed upload never loses the
	// existing image
	oldImagePath := ""
	if input.Image != nil {
		if err := s.validateImage(input.Image); err != nil {
			return nil, err
		}

		newPath, err := s.storeImage(input.Image)
		if err != nil {
			return nil, err
		}

		oldImagePath = product.Image
		product.Image = newPath
	}

	if err := s.productRepo.Update(product); err != nil {
		if input.Image != nil {
			s.imageStore.Remove(product.Image)
		}
		s.logger.Error("❌ [ProductService] Failed to update product record", "product_id", id, "error", err)
		return nil, err
	}

	if oldImagePath != "" && oldImagePath != product.Image {
		// Removal failure leaves a stray file, nothing more; log and move on
		s.imageStore.Remove(oldImagePath)
	}

	s.logger.Info("✅ [ProductService] Product updated successfully", "product_id", id)
	return product, nil
}

func (s *productService) SoftDeleteProduct(id string) (time.Time, error) {
	deletedAt, err := s.productRepo.SoftDelete(id)
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Info("🗑️ [ProductService] Product soft deleted", "product_id", id)
	return deletedAt, nil
}

func (s *productService) RestoreProduct(id string) (*models.Product, error) {
	product, err := s.productRepo.Restore(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("♻️ [ProductService] Product restored", "product_id", id)
	return product, nil
}

// acceptedImageExtensions lists the allowed upload types
var acceptedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func (s *productService) validateImage(image *ImageUpload) error {
	ext := strings.ToLower(filepath.Ext(image.Filename))
	if !acceptedImageExtensions[ext] {
		s.logger.Warn("⚠️ [ProductService] Rejected image type", "filename", image.Filename)
		return ErrInvalidImageType
	}

	if image.Size > s.cfg.MaxImageSize {
		s.logger.Warn("⚠️ [ProductService] Image exceeds size limit",
			"size_bytes", image.Size,
			"max_size_bytes", s.cfg.MaxImageSize,
		)
		return ErrImageTooLarge
	}

	return nil
}

func (s *productService) storeImage(image *ImageUpload) (string, error) {
	// Random name: replacement uploads must never overwrite the old file
	ext := strings.ToLower(filepath.Ext(image.Filename))
	filename := fmt.Sprintf("%s%s", uuid.NewString(), ext)

	path, err := s.imageStore.Save(filename, image.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrImageUpload, err)
	}
	return path, nil
}

// Service errors
var (
	ErrImageRequired    = errors.New("image file is required")
	ErrInvalidImageType = errors.New("image must be a jpg, jpeg or png file")
	ErrImageTooLarge    = errors.New("image exceeds the maximum allowed size")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrImageUpload      = errors.New("failed to store image")
)
