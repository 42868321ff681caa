package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iqmalr/test-bursa-efek/internal/database/models"
)

// ProductRepository defines the interface for product data operations.
// Soft-delete visibility follows the same rules as CategoryRepository:
// List sees live rows only, FindByID is unscoped.
type ProductRepository interface {
	Create(product *models.Product) error
	List() ([]models.Product, error)
	FindByID(id string) (*models.Product, error)
	Update(product *models.Product) error
	SoftDelete(id string) (time.Time, error)
	Restore(id string) (*models.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) List() ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id string) (*models.Product, error) {
	var product models.Product
	err := r.db.Unscoped().Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) SoftDelete(id string) (time.Time, error) {
	now := time.Now()
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)

	if result.Error != nil {
		return time.Time{}, result.Error
	}
	if result.RowsAffected == 0 {
		return time.Time{}, ErrProductNotFound
	}

	return now, nil
}

func (r *productRepository) Restore(id string) (*models.Product, error) {
	result := r.db.Unscoped().Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	return r.FindByID(id)
}

// Repository errors
var (
	ErrProductNotFound = errors.New("product not found")
)
