package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/inventory"
	"go-club-store/internal/feature/order"
	"go-club-store/internal/repo/memory"
	"go-club-store/pkg/upi"
)

type orderFixture struct {
	router   *gin.Engine
	orders   *memory.OrderStore
	products *memory.ProductStore
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orders := memory.NewOrderStore()
	products := memory.NewProductStore()
	log := zap.NewNop()
	svc := order.NewService(orders, products, inventory.New(products, log), nil, log)
	h := NewOrderHandler(svc, upi.Payee{VPA: "club@upi", Name: "Club Store"}, log)

	r := gin.New()
	r.POST("/orders", h.Create)
	r.DELETE("/orders/:id", h.Delete)
	r.POST("/orders/confirm", h.Confirm)
	return &orderFixture{router: r, orders: orders, products: products}
}

func (f *orderFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var envelope struct {
		Code int                        `json:"code"`
		Msg  string                     `json:"msg"`
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope.Data
}

func (f *orderFixture) seed(t *testing.T, id string, price int64, stock int) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &domain.Product{
		ID: id, Name: "item " + id, Price: price,
		SizeType: domain.SizeTypeNone, Stock: stock,
	}))
}

func TestCreateOrderReturnsUPILink(t *testing.T) {
	f := newOrderFixture(t)
	f.seed(t, "p1", 49900, 10)

	w, data := f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{{"productId": "p1", "quantity": 2}},
		"total": 1, // 客户端报价，应被忽略
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var total int64
	require.NoError(t, json.Unmarshal(data["total"], &total))
	assert.Equal(t, int64(99800), total)

	var ref, uri string
	require.NoError(t, json.Unmarshal(data["reference"], &ref))
	require.NoError(t, json.Unmarshal(data["upiUri"], &uri))
	assert.Len(t, ref, 10)
	assert.Contains(t, uri, "upi://pay?")
	assert.Contains(t, uri, "am=998.00")
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newOrderFixture(t)

	w, _ := f.do(t, http.MethodPost, "/orders", gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{{"productId": "ghost", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.seed(t, "p1", 49900, 10)
	_, data := f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{{"productId": "p1", "quantity": 1}},
	})
	var id string
	require.NoError(t, json.Unmarshal(data["id"], &id))

	w, _ := f.do(t, http.MethodDelete, "/orders/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodDelete, "/orders/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmEndpointStatusCodes(t *testing.T) {
	f := newOrderFixture(t)
	f.seed(t, "p1", 49900, 10)

	_, created := f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{{"productId": "p1", "quantity": 1}},
	})
	var ref, orderID string
	require.NoError(t, json.Unmarshal(created["reference"], &ref))
	require.NoError(t, json.Unmarshal(created["id"], &orderID))

	confirmBody := func(reference, txn string) gin.H {
		return gin.H{
			"reference": reference, "transactionId": txn,
			"name": "Asha", "email": "asha@example.com",
		}
	}

	// 缺字段 → 400
	w, _ := f.do(t, http.MethodPost, "/orders/confirm", gin.H{"reference": ref})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 未知引用号 → 404
	w, _ = f.do(t, http.MethodPost, "/orders/confirm", confirmBody("NOPE123456", "TXN1"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 成功 → 200
	w, data := f.do(t, http.MethodPost, "/orders/confirm", confirmBody(ref, "TXN1"))
	require.Equal(t, http.StatusOK, w.Code)
	var ok bool
	require.NoError(t, json.Unmarshal(data["success"], &ok))
	assert.True(t, ok)
	var gotID string
	require.NoError(t, json.Unmarshal(data["orderId"], &gotID))
	assert.Equal(t, orderID, gotID)

	// 重放同一引用号 → 404（已确认的单对协议不可见）
	w, _ = f.do(t, http.MethodPost, "/orders/confirm", confirmBody(ref, "TXN2"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 交易号占用 → 409 + 指回冲突订单
	_, created2 := f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{{"productId": "p1", "quantity": 1}},
	})
	var ref2 string
	require.NoError(t, json.Unmarshal(created2["reference"], &ref2))

	w, data = f.do(t, http.MethodPost, "/orders/confirm", confirmBody(ref2, "TXN1"))
	require.Equal(t, http.StatusConflict, w.Code)
	var conflictID string
	require.NoError(t, json.Unmarshal(data["conflictOrderId"], &conflictID))
	assert.Equal(t, orderID, conflictID)
}

func TestConfirmReportsShortfalls(t *testing.T) {
	f := newOrderFixture(t)
	f.seed(t, "a", 10000, 5)
	f.seed(t, "b", 20000, 3)

	_, created := f.do(t, http.MethodPost, "/orders", gin.H{
		"items": []gin.H{
			{"productId": "a", "quantity": 2},
			{"productId": "b", "quantity": 10},
		},
	})
	var ref string
	require.NoError(t, json.Unmarshal(created["reference"], &ref))

	w, data := f.do(t, http.MethodPost, "/orders/confirm", gin.H{
		"reference": ref, "transactionId": fmt.Sprintf("TXN-%s", ref),
		"name": "Asha", "email": "asha@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var shortfalls []inventory.DeductResult
	require.NoError(t, json.Unmarshal(data["stockShortfalls"], &shortfalls))
	require.Len(t, shortfalls, 1)
	assert.Equal(t, "b", shortfalls[0].ProductID)
	assert.Equal(t, inventory.ReasonInsufficientStock, shortfalls[0].Reason)
}
