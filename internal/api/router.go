package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iqmalr/test-bursa-efek/internal/handler"
	"github.com/iqmalr/test-bursa-efek/internal/middleware"
)

func SetupRouter(
	authHandler *handler.AuthHandler,
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth routes
	api := r.Group("/api")
	{
		api.POST("/login", authHandler.Login)
		api.POST("/register", authHandler.Register)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/refresh", authHandler.Refresh)
		protected.GET("/user", authHandler.CurrentUser)

		protected.GET("/category-products", categoryHandler.List)
		protected.POST("/category-products", categoryHandler.Create)
		protected.GET("/category-products/:id", categoryHandler.Get)
		protected.PUT("/category-products/:id", categoryHandler.Update)
		protected.DELETE("/category-products/:id", categoryHandler.Delete)
		protected.PATCH("/category-products/:id/restore", categoryHandler.Restore)

		protected.GET("/products", productHandler.List)
		protected.POST("/products", productHandler.Create)
		protected.GET("/products/:uuid", productHandler.Get)
		protected.PUT("/products/:uuid", productHandler.Update)
		protected.DELETE("/products/:uuid", productHandler.Delete)
		protected.PATCH("/products/:uuid/restore", productHandler.Restore)
	}

	return r
}
