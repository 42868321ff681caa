package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iqmalr/test-bursa-efek/internal/database/models"
)

// setupTestDB creates a new in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{})
	require.NoError(t, err)

	return db
}

func TestCategoryRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	t.Run("empty store returns empty slice", func(t *testing.T) {
		categories, err := repo.List()
		require.NoError(t, err)
		assert.NotNil(t, categories)
		assert.Empty(t, categories)
	})

	t.Run("excludes soft deleted categories", func(t *testing.T) {
		kept := &models.Category{Name: "Electronics"}
		deleted := &models.Category{Name: "Obsolete"}
		require.NoError(t, repo.Create(kept))
		require.NoError(t, repo.Create(deleted))

		_, err := repo.SoftDelete(deleted.ID)
		require.NoError(t, err)

		categories, err := repo.List()
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "Electronics", categories[0].Name)
	})
}

func TestCategoryRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	category := &models.Category{Name: "Tools"}
	require.NoError(t, repo.Create(category))

	t.Run("found", func(t *testing.T) {
		found, err := repo.FindByID(category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tools", found.Name)
	})

	t.Run("not found", func(t *testing.T) {
		found, err := repo.FindByID(9999)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.Nil(t, found)
	})

	t.Run("still finds soft deleted category", func(t *testing.T) {
		_, err := repo.SoftDelete(category.ID)
		require.NoError(t, err)

		found, err := repo.FindByID(category.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tools", found.Name)
		assert.True(t, found.DeletedAt.Valid)
	})
}

func TestCategoryRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	category := &models.Category{Name: "Garden"}
	require.NoError(t, repo.Create(category))

	t.Run("success", func(t *testing.T) {
		deletedAt, err := repo.SoftDelete(category.ID)
		require.NoError(t, err)
		assert.False(t, deletedAt.IsZero())
	})

	t.Run("double delete reports not found", func(t *testing.T) {
		_, err := repo.SoftDelete(category.ID)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.SoftDelete(9999)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestCategoryRepository_Restore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	category := &models.Category{Name: "Kitchen"}
	require.NoError(t, repo.Create(category))

	t.Run("restoring a live category is rejected", func(t *testing.T) {
		restored, err := repo.Restore(category.ID)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.Nil(t, restored)
	})

	t.Run("restore after soft delete", func(t *testing.T) {
		_, err := repo.SoftDelete(category.ID)
		require.NoError(t, err)

		restored, err := repo.Restore(category.ID)
		require.NoError(t, err)
		assert.Equal(t, category.ID, restored.ID)
		assert.Equal(t, "Kitchen", restored.Name)
		assert.False(t, restored.DeletedAt.Valid)

		// Back in the default listing
		categories, err := repo.List()
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		restored, err := repo.Restore(9999)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		assert.Nil(t, restored)
	})
}

func TestCategoryRepository_Exists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	category := &models.Category{Name: "Audio"}
	require.NoError(t, repo.Create(category))

	exists, err := repo.Exists(category.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(9999)
	require.NoError(t, err)
	assert.False(t, exists)

	// A soft deleted category no longer counts as referenceable
	_, err = repo.SoftDelete(category.ID)
	require.NoError(t, err)

	exists, err = repo.Exists(category.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
