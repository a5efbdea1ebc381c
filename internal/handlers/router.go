package handlers

import (
	"net/http"
	"time"

	"stone_sales/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route. metrics may be nil, in which case /metrics is not served.
func NewRouter(h *APIHandler, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))

	router.GET("/health", h.Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)

		api.GET("/stones", h.ListStones)
		api.GET("/stones/:id", h.GetStone)
	}

	session := api.Group("", h.RequireSession())
	{
		session.POST("/orders", h.PlaceOrder)
		session.GET("/orders", h.ListOrders)
		session.GET("/orders/:id", h.GetOrder)
		session.POST("/custom-orders", h.SubmitCustomOrder)
		session.GET("/custom-orders", h.ListCustomOrders)
		session.GET("/custom-orders/:id", h.GetCustomOrder)
	}

	admin := api.Group("", h.RequireSession(), h.RequireRole(models.RoleAdmin))
	{
		admin.POST("/stones", h.CreateStone)
		admin.PUT("/stones/:id", h.UpdateStone)
		admin.DELETE("/stones/:id", h.DeleteStone)
		admin.POST("/stones/:id/restock", h.RestockStone)

		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.POST("/orders/:id/cancel", h.CancelOrder)
		admin.PUT("/orders/:id/employee", h.AssignEmployee)
		admin.DELETE("/orders/:id/employee", h.UnassignEmployee)

		admin.POST("/custom-orders/:id/convert", h.ConvertCustomOrder)
		admin.POST("/custom-orders/:id/reject", h.RejectCustomOrder)

		admin.GET("/employees", h.ListEmployees)
		admin.POST("/employees", h.CreateEmployee)
		admin.PUT("/employees/:id", h.UpdateEmployee)
		admin.DELETE("/employees/:id", h.DeleteEmployee)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
