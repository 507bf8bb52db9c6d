package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-club-store/internal/feature/inventory"
	resp "go-club-store/internal/transport/http/response"
)

type InventoryHandler struct {
	svc *inventory.Service
}

func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

type deductIn struct {
	Items []inventory.DeductItem `json:"items" binding:"required,min=1,dive"`
}

// Deduct POST /inventory/deduct 确认流程内部使用，同时保留给人工对账重试。
// 逐行结果返回，单行失败不影响其它行。
func (h *InventoryHandler) Deduct(c *gin.Context) {
	var in deductIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	results := h.svc.DeductBatch(c.Request.Context(), in.Items)
	c.JSON(http.StatusOK, resp.OK(gin.H{"results": results}))
}
