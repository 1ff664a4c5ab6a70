package api

import (
	"taskpilot/internal/middleware"
	"taskpilot/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers, eventsHandler *EventsHandler, jwtService *services.JWTService) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Device token issuance (no auth required)
	router.POST("/auth/token", handlers.AuthTokenHandler)

	// Task event stream; authenticates in-band via $AUTH
	router.GET("/events", eventsHandler.HandleWebSocket)

	// API routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(jwtService))
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", handlers.CreateTaskHandler)
			tasks.GET("", handlers.ListTasksHandler)
			tasks.GET("/:taskId", handlers.GetTaskHandler)
			tasks.POST("/:taskId/cancel", handlers.CancelTaskHandler)
			tasks.DELETE("/:taskId", handlers.DeleteTaskHandler)
		}

		api.POST("/intent/parse", handlers.ParseIntentHandler)
		api.POST("/recommendations", handlers.RecommendationHandler)

		modelRoutes := api.Group("/models")
		{
			modelRoutes.GET("", handlers.ListModelsHandler)
			modelRoutes.GET("/:modelName/performance", handlers.GetModelPerformanceHandler)
			modelRoutes.POST("/:modelName/performance", handlers.RecordModelPerformanceHandler)
		}

		workflows := api.Group("/workflows")
		{
			workflows.POST("/execute", handlers.ExecuteWorkflowHandler)
			workflows.POST("/execute-sync", handlers.ExecuteWorkflowSyncHandler)
			workflows.GET("/status/:runId", handlers.GetWorkflowStatusHandler)
		}

		schedules := api.Group("/schedules")
		{
			schedules.POST("", handlers.CreateScheduleHandler)
			schedules.GET("", handlers.ListSchedulesHandler)
			schedules.DELETE("/:scheduleId", handlers.RemoveScheduleHandler)
		}

		agent := api.Group("/agent")
		{
			agent.GET("/tools", handlers.ListToolsHandler)
			agent.POST("/tools/execute", handlers.ExecuteToolHandler)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
