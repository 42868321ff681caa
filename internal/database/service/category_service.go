package service

import (
	"log/slog"
	"time"

	"github.com/iqmalr/test-bursa-efek/internal/database/models"
	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	CreateCategory(name string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	GetCategory(id uint) (*models.Category, error)
	UpdateCategory(id uint, name string) (*models.Category, error)
	SoftDeleteCategory(id uint) (time.Time, error)
	RestoreCategory(id uint) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// NewCategoryService creates a new category service instance
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *slog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *categoryService) CreateCategory(name string) (*models.Category, error) {
	category := &models.Category{Name: name}

	if err := s.categoryRepo.Create(category); err != nil {
		s.logger.Error("❌ [CategoryService] Failed to create category", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [CategoryService] Category created", "category_id", category.ID, "name", name)
	return category, nil
}

func (s *categoryService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.List()
}

func (s *categoryService) GetCategory(id uint) (*models.Category, error) {
	return s.categoryRepo.FindByID(id)
}

func (s *categoryService) UpdateCategory(id uint, name string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.categoryRepo.Update(category); err != nil {
		s.logger.Error("❌ [CategoryService] Failed to update category", "category_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [CategoryService] Category updated", "category_id", id)
	return category, nil
}

func (s *categoryService) SoftDeleteCategory(id uint) (time.Time, error) {
	deletedAt, err := s.categoryRepo.SoftDelete(id)
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Info("🗑️ [CategoryService] Category soft deleted", "category_id", id)
	return deletedAt, nil
}

func (s *categoryService) RestoreCategory(id uint) (*models.Category, error) {
	category, err := s.categoryRepo.Restore(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("♻️ [CategoryService] Category restored", "category_id", id)
	return category, nil
}
