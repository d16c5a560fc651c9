// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/smart-accounting/backend/internal/integration/entrypoint/controller"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                    *gin.Engine
	healthController          *controller.HealthController
	pointsController          *controller.PointsController
	smartAccountingController *controller.SmartAccountingController
	rateLimiter               *middleware.RateLimiter
	authMiddleware            *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	pointsController *controller.PointsController,
	smartAccountingController *controller.SmartAccountingController,
	rateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:          healthController,
		pointsController:          pointsController,
		smartAccountingController: smartAccountingController,
		rateLimiter:               rateLimiter,
		authMiddleware:            authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		// Points ledger routes (require authentication)
		if r.pointsController != nil && r.authMiddleware != nil {
			points := v1.Group("/points")
			points.Use(r.authMiddleware.Authenticate())
			{
				points.GET("", r.pointsController.GetBalance)
				points.POST("/checkin", r.pointsController.Checkin)
				points.GET("/checkin", r.pointsController.CheckinStatus)
				points.GET("/ledger", r.pointsController.ListLedger)
			}
		}

		// Smart accounting routes (require authentication; paid, so rate limited)
		if r.smartAccountingController != nil && r.authMiddleware != nil {
			smart := v1.Group("/smart-accounting")
			smart.Use(r.authMiddleware.Authenticate())
			if r.rateLimiter != nil {
				smart.Use(r.rateLimiter.Middleware())
			}
			{
				smart.POST("", r.smartAccountingController.Process)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
