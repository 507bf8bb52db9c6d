package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-club-store/internal/core/auth"
	"go-club-store/internal/feature/catalog"
	"go-club-store/internal/feature/order"
	"go-club-store/internal/feature/user"
	mdw "go-club-store/internal/transport/http/middleware"
)

// AdminDeps 管理端依赖
type AdminDeps struct {
	Orders  *order.Service
	Catalog *catalog.Service
	Users   *user.Service
}

// NewAdminEngine 管理端统一要求 admin 角色；访问日志/恢复走 ginzap
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, d AdminDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimit(100, 200),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		ginzap.Ginzap(l, time.RFC3339, true),
		ginzap.RecoveryWithZap(l, true),
	)

	// 健康检查 + prometheus 暴露
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))

	mountOrderActions(admin, d.Orders)
	mountProductActions(admin, d.Catalog)
	mountUserActions(admin, d.Users)

	return r
}
