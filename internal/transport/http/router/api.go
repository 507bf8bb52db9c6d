package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-club-store/internal/transport/http/handler"
	mdw "go-club-store/internal/transport/http/middleware"
)

// APIDeps 店面端依赖
type APIDeps struct {
	Orders    *handler.OrderHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	Auth      *handler.AuthHandler
}

// NewAPIEngine 店面端：下单/确认全程无鉴权（信任边界是 reference+transactionId），
// 所以限速和并发闸必须在最前面。
func NewAPIEngine(l *zap.Logger, d APIDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	api.POST("/auth/login", d.Auth.Login)

	api.GET("/products", d.Catalog.List)

	api.POST("/orders", d.Orders.Create)
	api.DELETE("/orders/:id", d.Orders.Delete)
	api.POST("/orders/confirm", d.Orders.Confirm)

	// 确认流程内部也走这条逻辑；保留接口给人工对账重试
	api.POST("/inventory/deduct", d.Inventory.Deduct)

	return r
}
