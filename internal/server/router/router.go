package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/server/handlers"
)

// Handlers groups the endpoint adapters mounted under /api.
type Handlers struct {
	Records   *handlers.RecordHandler
	Inventory *handlers.InventoryHandler
	Timers    *handlers.TimerHandler
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", handlers.ClientIdentity())
	api.GET("/dashboard", h.Dashboard.Dashboard)

	recordsGroup := api.Group("/records")
	recordsGroup.GET("", h.Records.List)
	recordsGroup.POST("", h.Records.Create)
	recordsGroup.PATCH("/:id", h.Records.Update)

	inventory := api.Group("/inventory")
	inventory.GET("", h.Inventory.List)
	inventory.POST("/:product/restock", h.Inventory.Restock)
	inventory.POST("/:product/consume", h.Inventory.Consume)

	timers := api.Group("/timers")
	timers.GET("", h.Timers.List)
	timers.POST("/:kind/start", h.Timers.Start)
	timers.POST("/:kind/stop", h.Timers.Stop)
	timers.DELETE("/:kind", h.Timers.Cancel)

	analytics := api.Group("/analytics")
	analytics.GET("/daily", h.Dashboard.Daily)
	analytics.GET("/dayparts", h.Dashboard.Dayparts)
	analytics.GET("/sleep", h.Dashboard.Sleep)
	analytics.GET("/weight", h.Dashboard.Weight)

	api.GET("/export", h.Dashboard.Export)
	api.GET("/reports", h.Reports.List)

	logger.Info("router initialized")
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
