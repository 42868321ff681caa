package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iqmalr/test-bursa-efek/internal/database/models"
)

// CategoryRepository defines the interface for category data operations.
//
// Visibility of soft-deleted rows is intentionally asymmetric: List and
// Exists see live rows only, while FindByID is unscoped and returns
// soft-deleted rows too. SoftDelete matches live rows only, so deleting an
// already-deleted id reports not found rather than succeeding twice.
type CategoryRepository interface {
	Create(category *models.Category) error
	List() ([]models.Category, error)
	FindByID(id uint) (*models.Category, error)
	Exists(id uint) (bool, error)
	Update(category *models.Category) error
	SoftDelete(id uint) (time.Time, error)
	Restore(id uint) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) List() ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.db.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.Unscoped().First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepository) SoftDelete(id uint) (time.Time, error) {
	now := time.Now()
	result := r.db.Model(&models.Category{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)

	if result.Error != nil {
		return time.Time{}, result.Error
	}
	if result.RowsAffected == 0 {
		return time.Time{}, ErrCategoryNotFound
	}

	return now, nil
}

func (r *categoryRepository) Restore(id uint) (*models.Category, error) {
	result := r.db.Unscoped().Model(&models.Category{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}

	return r.FindByID(id)
}

// Repository errors
var (
	ErrCategoryNotFound = errors.New("category not found")
)
