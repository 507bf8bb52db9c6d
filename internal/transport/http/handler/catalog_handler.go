package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-club-store/internal/feature/catalog"
	resp "go-club-store/internal/transport/http/response"
)

type CatalogHandler struct {
	svc *catalog.Service
	log *zap.Logger
}

func NewCatalogHandler(svc *catalog.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// List GET /products 店面列表（走缓存）
func (h *CatalogHandler) List(c *gin.Context) {
	ps, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.log.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "storage unavailable"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(ps))
}
