package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lavka/pkg/logger"
	"lavka/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Витрина и диалоги открыты для шлюза бота, админские операции защищены JWT
func SetupRoutes(
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	checkoutHandler *CheckoutHandler,
	orderHandler *OrderHandler,
	adminFlowHandler *AdminFlowHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("storefront"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "storefront",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Витрина - публичное чтение каталога
	catalog := router.Group("/catalog")
	{
		catalog.GET("/categories", catalogHandler.GetCategories)
		catalog.GET("/categories/:id/products", catalogHandler.GetCategoryProducts)
		catalog.GET("/products", catalogHandler.GetProducts)
		catalog.GET("/products/:id", catalogHandler.GetProduct)
	}

	// Операции от имени чата мессенджера
	chats := router.Group("/chats/:chat_id")
	{
		chats.GET("/cart", cartHandler.GetCart)
		chats.POST("/cart/items", cartHandler.AddToCart)
		chats.DELETE("/cart", cartHandler.ClearCart)

		chats.POST("/checkout/start", checkoutHandler.Start)
		chats.POST("/checkout/input", checkoutHandler.Input)
		chats.POST("/checkout/cancel", checkoutHandler.Cancel)
	}

	// Позиции корзины адресуются собственным ID
	cart := router.Group("/cart/items")
	{
		cart.PATCH("/:id", cartHandler.ChangeQty)
		cart.DELETE("/:id", cartHandler.RemoveItem)
	}

	// Админские эндпоинты - только для администраторов
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

		admin.POST("/products", catalogHandler.CreateProduct)
		admin.GET("/products/no-image", catalogHandler.GetProductsWithoutImage)
		admin.PATCH("/products/:id", catalogHandler.UpdateProduct)
		admin.POST("/products/:id/image", catalogHandler.SetProductImage)
		admin.DELETE("/products/:id", catalogHandler.DeleteProduct)

		admin.GET("/orders", orderHandler.ListOrders)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.GET("/export/orders", orderHandler.ExportOrders)

		flows := admin.Group("/chats/:chat_id/flow")
		{
			flows.POST("/new-product", adminFlowHandler.StartNewProduct)
			flows.POST("/edit", adminFlowHandler.StartEdit)
			flows.POST("/photo", adminFlowHandler.StartSetPhoto)
			flows.POST("/input", adminFlowHandler.Input)
			flows.POST("/cancel", adminFlowHandler.Cancel)
		}
	}

	return router
}
