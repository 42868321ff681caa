package main

import (
	"fmt"
	"os"

	"github.com/iqmalr/test-bursa-efek/internal/api"
	"github.com/iqmalr/test-bursa-efek/internal/config"
	"github.com/iqmalr/test-bursa-efek/internal/database"
	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
	"github.com/iqmalr/test-bursa-efek/internal/database/service"
	"github.com/iqmalr/test-bursa-efek/internal/handler"
	"github.com/iqmalr/test-bursa-efek/internal/logger"
	"github.com/iqmalr/test-bursa-efek/internal/middleware"
	"github.com/iqmalr/test-bursa-efek/internal/storage"
)

func main() {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting admin API...",
		"environment", cfg.AppEnv,
	)

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()

	// 4. Connect to Redis (token revocation list). Without it logout would
	// silently degrade to a no-op against stateless tokens, so fail hard.
	tokenStore, err := database.NewTokenStore(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer tokenStore.Close()

	// 5. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	// 6. Initialize Image Store
	imageStore := storage.NewLocalStore(cfg.UploadDir, appLogger)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, tokenStore, cfg, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	productService := service.NewProductService(productRepo, categoryRepo, imageStore, cfg, appLogger)

	// 8. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, appLogger)
	categoryHandler := handler.NewCategoryHandler(categoryService, appLogger)
	productHandler := handler.NewProductHandler(productService, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	r := api.SetupRouter(authHandler, categoryHandler, productHandler, authMiddleware)

	// 9. Start HTTP Server
	addr := fmt.Sprintf(":%s", cfg.ApiServicePort)
	appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", addr)
	if err := r.Run(addr); err != nil {
		appLogger.Error("❌ HTTP Server failed to start", "error", err)
		os.Exit(1)
	}
}
