package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/order"
	mdw "go-club-store/internal/transport/http/middleware"
	resp "go-club-store/internal/transport/http/response"
	"go-club-store/pkg/upi"
)

type OrderHandler struct {
	svc   *order.Service
	payee upi.Payee
	log   *zap.Logger
}

func NewOrderHandler(svc *order.Service, payee upi.Payee, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, payee: payee, log: log}
}

// createOrderIn 客户端还会带 name/price/total，只作展示，服务端一律重算
type createOrderIn struct {
	Items []order.CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Total int64                `json:"total"`
}

// Create POST /orders → 201 占位单 + UPI 支付串
func (h *OrderHandler) Create(c *gin.Context) {
	var in createOrderIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	o, err := h.svc.Checkout(c.Request.Context(), in.Items)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		default:
			h.log.Error("checkout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "storage unavailable"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp.OK(gin.H{
		"id":        o.ID,
		"reference": o.Reference,
		"items":     o.Items,
		"total":     o.Total,
		"status":    o.Status,
		"createdAt": o.CreatedAt,
		"upiUri":    upi.PayURI(h.payee, o.Total, o.Reference),
	}))
}

// Delete DELETE /orders/:id 结账放弃时的自助清理；只会命中 Pending 占位单
func (h *OrderHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "missing id"))
		return
	}
	if err := h.svc.CancelPending(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "order not found"))
			return
		}
		h.log.Error("cancel pending failed", zap.String("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "storage unavailable"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
}

// Confirm POST /orders/confirm 付款确认协议入口
func (h *OrderHandler) Confirm(c *gin.Context) {
	var in order.ConfirmInput
	if err := c.ShouldBindJSON(&in); err != nil {
		mdw.ConfirmTotal.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	res, err := h.svc.Confirm(c.Request.Context(), in)
	if err != nil {
		var dup *domain.DuplicateTransactionError
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			mdw.ConfirmTotal.WithLabelValues("validation").Inc()
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		case errors.Is(err, domain.ErrOrderNotFound):
			mdw.ConfirmTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "no pending order for reference "+in.Reference))
		case errors.As(err, &dup):
			mdw.ConfirmTotal.WithLabelValues("duplicate_txn").Inc()
			r := resp.New(resp.CodeConflict, "transaction id already used", gin.H{
				"transactionId":   dup.TransactionID,
				"conflictOrderId": dup.OrderID,
			})
			c.JSON(http.StatusConflict, r)
		case errors.Is(err, domain.ErrOrderNotPending):
			mdw.ConfirmTotal.WithLabelValues("not_pending").Inc()
			c.JSON(http.StatusConflict, resp.Error(resp.CodeConflict, "order is no longer pending"))
		default:
			mdw.ConfirmTotal.WithLabelValues("error").Inc()
			h.log.Error("confirm failed", zap.String("reference", in.Reference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "storage unavailable"))
		}
		return
	}
	mdw.ConfirmTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"success":         true,
		"orderId":         res.Order.ID,
		"order":           res.Order,
		"stockShortfalls": res.StockShortfalls,
	}))
}
