package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iqmalr/test-bursa-efek/internal/api"
	"github.com/iqmalr/test-bursa-efek/internal/config"
	"github.com/iqmalr/test-bursa-efek/internal/database"
	"github.com/iqmalr/test-bursa-efek/internal/database/models"
	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
	"github.com/iqmalr/test-bursa-efek/internal/database/service"
	"github.com/iqmalr/test-bursa-efek/internal/handler"
	"github.com/iqmalr/test-bursa-efek/internal/middleware"
	"github.com/iqmalr/test-bursa-efek/internal/storage"
)

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	DeletedAt *string         `json:"deleted_at"`
}

type authEnvelope struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Authorisation struct {
		Token string `json:"token"`
		Type  string `json:"type"`
	} `json:"authorisation"`
}

func setupTestAPI(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokenStore := database.NewTokenStoreForTesting(client, logger)

	t.Cleanup(func() {
		tokenStore.Close()
		mr.Close()
	})

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenExpiration: 3600,
		RefreshWindow:   604800,
		UploadDir:       t.TempDir(),
		MaxImageSize:    2 * 1024 * 1024,
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	imageStore := storage.NewLocalStore(cfg.UploadDir, logger)

	authService := service.NewAuthService(userRepo, tokenStore, cfg, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, imageStore, cfg, logger)

	return api.SetupRouter(
		handler.NewAuthHandler(authService, logger),
		handler.NewCategoryHandler(categoryService, logger),
		handler.NewProductHandler(productService, logger),
		middleware.NewAuthMiddleware(authService, logger),
	)
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doMultipart(router *gin.Engine, method, path, token string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if imageName != "" {
		part, _ := writer.CreateFormFile("image", imageName)
		part.Write([]byte("fake image bytes"))
	}
	writer.Close()

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	w := doJSON(router, "POST", "/api/register", "", map[string]string{
		"name":     "Admin A",
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Authorisation.Token)
	assert.Equal(t, "bearer", resp.Authorisation.Type)
	return resp.Authorisation.Token
}

func TestHealthCheck(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(router, "GET", "/api/health", "", nil)
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := setupTestAPI(t)

	w := doJSON(router, "GET", "/api/category-products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "GET", "/api/products", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := setupTestAPI(t)
	registerAndLogin(t, router)

	wrongPassword := doJSON(router, "POST", "/api/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	unknownEmail := doJSON(router, "POST", "/api/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Identical body: the response never reveals which field was wrong
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogoutRevokesToken(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	w := doJSON(router, "POST", "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully logged out", resp.Message)

	// The token no longer passes the middleware
	w = doJSON(router, "GET", "/api/category-products", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	w := doJSON(router, "POST", "/api/refresh", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp authEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	newToken := resp.Authorisation.Token
	require.NotEmpty(t, newToken)
	assert.NotEqual(t, token, newToken)

	// New token works, the old one was rotated onto the revocation list
	w = doJSON(router, "GET", "/api/user", newToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryListEmpty(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	w := doJSON(router, "GET", "/api/category-products", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "No categories found", resp.Message)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestCategoryValidation(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	// Missing name
	w := doJSON(router, "POST", "/api/category-products", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown id
	w = doJSON(router, "GET", "/api/category-products/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "PUT", "/api/category-products/9999", token, map[string]string{"name": "Whatever"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "DELETE", "/api/category-products/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "PATCH", "/api/category-products/9999/restore", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductValidation(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	// Product referencing a category that does not exist: validation
	// failure, nothing persisted
	w := doMultipart(router, "POST", "/api/products", token, map[string]string{
		"product_category_id": "9999",
		"name":                "Orphan",
		"price":               "1.00",
	}, "orphan.jpg")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/api/products", token, nil)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `[]`, string(resp.Data))

	// Need a real category for the remaining cases
	w = doJSON(router, "POST", "/api/category-products", token, map[string]string{"name": "Tools"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Missing image
	w = doMultipart(router, "POST", "/api/products", token, map[string]string{
		"product_category_id": "1",
		"name":                "Imageless",
		"price":               "1.00",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong image type
	w = doMultipart(router, "POST", "/api/products", token, map[string]string{
		"product_category_id": "1",
		"name":                "Animated",
		"price":               "1.00",
	}, "animation.gif")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Negative price
	w = doMultipart(router, "POST", "/api/products", token, map[string]string{
		"product_category_id": "1",
		"name":                "Freebie",
		"price":               "-1.00",
	}, "freebie.jpg")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndToEndLifecycle(t *testing.T) {
	router := setupTestAPI(t)

	// Register user A and log in
	token := registerAndLogin(t, router)

	// Create category "Tools"
	w := doJSON(router, "POST", "/api/category-products", token, map[string]string{"name": "Tools"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	var category models.Category
	require.NoError(t, json.Unmarshal(created.Data, &category))
	assert.Equal(t, "Tools", category.Name)

	// Create a product referencing it
	w = doMultipart(router, "POST", "/api/products", token, map[string]string{
		"product_category_id": fmt.Sprintf("%d", category.ID),
		"name":                "Hammer",
		"price":               "9.99",
	}, "hammer.jpg")
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	var product models.Product
	require.NoError(t, json.Unmarshal(created.Data, &product))
	require.NotEmpty(t, product.ID)
	assert.Equal(t, category.ID, product.ProductCategoryID)

	// Soft delete the product
	w = doJSON(router, "DELETE", "/api/products/"+product.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var deleted envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.NotNil(t, deleted.DeletedAt)

	// Default listing excludes it while deleted
	w = doJSON(router, "GET", "/api/products", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.JSONEq(t, `[]`, string(list.Data))

	// Lookup by id still works while deleted (intentional quirk)
	w = doJSON(router, "GET", "/api/products/"+product.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Restore
	w = doJSON(router, "PATCH", "/api/products/"+product.ID+"/restore", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Get by id returns the entity with its pre-delete state
	w = doJSON(router, "GET", "/api/products/"+product.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	var restored models.Product
	require.NoError(t, json.Unmarshal(fetched.Data, &restored))
	assert.Equal(t, product.ID, restored.ID)
	assert.Equal(t, product.Name, restored.Name)
	assert.Equal(t, product.Image, restored.Image)
	assert.True(t, restored.Price.Equal(product.Price))
	assert.False(t, restored.DeletedAt.Valid)
}

func TestCategoryLifecycle(t *testing.T) {
	router := setupTestAPI(t)
	token := registerAndLogin(t, router)

	w := doJSON(router, "POST", "/api/category-products", token, map[string]string{"name": "Garden"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var category models.Category
	require.NoError(t, json.Unmarshal(resp.Data, &category))

	path := fmt.Sprintf("/api/category-products/%d", category.ID)

	// Update
	w = doJSON(router, "PUT", path, token, map[string]string{"name": "Outdoor"})
	require.Equal(t, http.StatusOK, w.Code)

	// Soft delete, then double delete is rejected
	w = doJSON(router, "DELETE", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, "DELETE", path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Restore, then restoring a live category is rejected
	w = doJSON(router, "PATCH", path+"/restore", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, &category))
	assert.Equal(t, "Outdoor", category.Name)
	assert.False(t, category.DeletedAt.Valid)

	w = doJSON(router, "PATCH", path+"/restore", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
