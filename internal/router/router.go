package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/internal/app/controller"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type Router struct {
	productController       *controller.ProductController
	variantController       *controller.VariantController
	variantSocketController *controller.VariantSocketController
	uploadController        *controller.UploadController
	auditController         *controller.AuditController
	authMiddleware          *middleware.AuthMiddleware
	db                      *gorm.DB
	redis                   *redis.Client
	config                  *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	variantController *controller.VariantController,
	variantSocketController *controller.VariantSocketController,
	uploadController *controller.UploadController,
	auditController *controller.AuditController,
	authMiddleware *middleware.AuthMiddleware,
	db *gorm.DB,
	redisClient *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:       productController,
		variantController:       variantController,
		variantSocketController: variantSocketController,
		uploadController:        uploadController,
		auditController:         auditController,
		authMiddleware:          authMiddleware,
		db:                      db,
		redis:                   redisClient,
		config:                  cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	admin := []gin.HandlerFunc{
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(middleware.RoleAdmin),
	}
	withAdmin := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), h)
	}

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.POST("", withAdmin(r.productController.CreateProduct)...)
			products.POST("/import", withAdmin(r.productController.ImportProduct)...)
			products.DELETE("/:id", withAdmin(r.productController.DeleteProduct)...)
			products.PATCH("/:id/skus/:skuId/stock", withAdmin(r.productController.UpdateStock)...)
			products.POST("/:id/skus/:skuId/media", withAdmin(r.productController.AttachMedia)...)
			products.GET("/:id/audit", withAdmin(r.auditController.AuditProduct)...)

			products.GET("/:id/variants", r.variantController.GetView)
			products.POST("/:id/variants/sessions", r.variantController.StartSession)
			products.GET("/:id/variants/live", r.variantSocketController.Live)
		}

		sessions := v1.Group("/variants/sessions")
		{
			sessions.GET("/:sessionId", r.variantController.GetSession)
			sessions.POST("/:sessionId/choose", r.variantController.Choose)
			sessions.POST("/:sessionId/reset", r.variantController.ResetSession)
			sessions.DELETE("/:sessionId", r.variantController.EndSession)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(admin...)
		{
			uploads.POST("/sku-media", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

// health reports whether the database and Redis answer.
func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if sqlDB, err := r.db.DB(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := r.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	if !healthy {
		middleware.GetLoggerFromContext(c).Warn("Health check failed", checks)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Shoplive catalog API is running",
		"checks":  checks,
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
