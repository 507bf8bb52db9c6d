package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/inventory"
	"go-club-store/internal/repo/memory"
)

type testEnv struct {
	orders   *memory.OrderStore
	products *memory.ProductStore
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	orders := memory.NewOrderStore()
	products := memory.NewProductStore()
	log := zap.NewNop()
	inv := inventory.New(products, log)
	return &testEnv{
		orders:   orders,
		products: products,
		svc:      NewService(orders, products, inv, nil, log),
	}
}

func (e *testEnv) seedPlain(t *testing.T, id string, price int64, stock int) {
	t.Helper()
	require.NoError(t, e.products.Create(context.Background(), &domain.Product{
		ID: id, Name: "item " + id, Price: price,
		SizeType: domain.SizeTypeNone, Stock: stock,
	}))
}

func (e *testEnv) seedSized(t *testing.T, id string, price int64, sizes map[string]int) {
	t.Helper()
	p := &domain.Product{ID: id, Name: "tee " + id, Price: price, SizeType: domain.SizeTypeClothing}
	for s, q := range sizes {
		p.Sizes = append(p.Sizes, domain.ProductStock{ProductID: id, Size: s, Quantity: q})
	}
	require.NoError(t, e.products.Create(context.Background(), p))
}

func (e *testEnv) stockOf(t *testing.T, id, size string) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	if size == "" {
		return p.Stock
	}
	q, ok := p.StockFor(size)
	require.True(t, ok)
	return q
}

func TestCheckoutRecomputesTotal(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 10)
	e.seedPlain(t, "p2", 15000, 10)

	// 客户端报价不进服务层；总价只由现价×数量决定
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2*49900+15000), o.Total)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Len(t, o.Reference, 10)
	assert.Nil(t, o.TransactionID)
	assert.Nil(t, o.Customer())

	// 下单不扣库存
	assert.Equal(t, 10, e.stockOf(t, "p1", ""))
}

func TestCheckoutSizeValidation(t *testing.T) {
	e := newTestEnv(t)
	e.seedSized(t, "tee", 29900, map[string]int{"M": 5, "L": 3})

	_, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "tee", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "tee", Size: "XXL", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "tee", Size: "M", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "M", o.Items[0].Size)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "ghost", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestConfirmHappyPath(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 5)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	res, err := e.svc.Confirm(context.Background(), ConfirmInput{
		Reference:     o.Reference,
		TransactionID: "TXN1",
		Name:          "Asha",
		Email:         "asha@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, res.Order.Status)
	require.NotNil(t, res.Order.TransactionID)
	assert.Equal(t, "TXN1", *res.Order.TransactionID)
	require.NotNil(t, res.Order.Customer())
	assert.Equal(t, PhoneNotProvided, res.Order.Customer().Phone)
	assert.Empty(t, res.StockShortfalls)
	assert.Equal(t, 3, e.stockOf(t, "p1", ""))
}

func TestConfirmUnknownReference(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: "NOPE123456", TransactionID: "TXN1",
		Name: "Asha", Email: "asha@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestConfirmDuplicateTransaction(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 10)
	first, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	second, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	_, err = e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: first.Reference, TransactionID: "TXN-SHARED",
		Name: "Asha", Email: "asha@example.com",
	})
	require.NoError(t, err)

	// 同一交易号确认另一单必须被拒，且要指回占用它的订单
	_, err = e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: second.Reference, TransactionID: "TXN-SHARED",
		Name: "Ravi", Email: "ravi@example.com",
	})
	var dup *domain.DuplicateTransactionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "TXN-SHARED", dup.TransactionID)
	assert.Equal(t, first.ID, dup.OrderID)

	// 第二单原样保留，库存只扣了第一单的一件
	o2, err := e.orders.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o2.Status)
	assert.Equal(t, 9, e.stockOf(t, "p1", ""))
}

func TestConfirmAlreadyConfirmedNoDoubleDeduct(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 10)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)

	_, err = e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: o.Reference, TransactionID: "TXN1",
		Name: "Asha", Email: "asha@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, 7, e.stockOf(t, "p1", ""))

	// 换交易号重放：已确认的单对确认协议不可见，库存不再动
	_, err = e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: o.Reference, TransactionID: "TXN2",
		Name: "Asha", Email: "asha@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Equal(t, 7, e.stockOf(t, "p1", ""))
}

func TestConfirmConcurrentSingleWinner(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 100)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Confirm(context.Background(), ConfirmInput{
				Reference:     o.Reference,
				TransactionID: fmt.Sprintf("TXN-%02d", i),
				Name:          "Asha",
				Email:         "asha@example.com",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one confirmation may win")
	// 赢家恰好扣一次
	assert.Equal(t, 98, e.stockOf(t, "p1", ""))

	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.TransactionID)
}

func TestConfirmPartialShortfallStillConfirms(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "a", 10000, 5)
	e.seedPlain(t, "b", 20000, 3)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 10},
	})
	require.NoError(t, err)

	res, err := e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: o.Reference, TransactionID: "TXN1",
		Name: "Asha", Email: "asha@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, res.Order.Status)

	require.Len(t, res.StockShortfalls, 1)
	assert.Equal(t, "b", res.StockShortfalls[0].ProductID)
	assert.Equal(t, inventory.ReasonInsufficientStock, res.StockShortfalls[0].Reason)

	// a 正常扣减，b 缺货不动也不回滚 a
	assert.Equal(t, 3, e.stockOf(t, "a", ""))
	assert.Equal(t, 3, e.stockOf(t, "b", ""))
}

func TestCancelPendingOnly(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 10)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, e.svc.CancelPending(context.Background(), o.ID))
	assert.ErrorIs(t, e.svc.CancelPending(context.Background(), o.ID), domain.ErrOrderNotFound)

	o2, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	_, err = e.svc.Confirm(context.Background(), ConfirmInput{
		Reference: o2.Reference, TransactionID: "TXN1",
		Name: "Asha", Email: "asha@example.com",
	})
	require.NoError(t, err)

	// 已确认的单不允许自助删除
	assert.ErrorIs(t, e.svc.CancelPending(context.Background(), o2.ID), domain.ErrOrderNotFound)
}

func TestSetStatusGuardsTransitions(t *testing.T) {
	e := newTestEnv(t)
	e.seedPlain(t, "p1", 49900, 10)
	o, err := e.svc.Checkout(context.Background(), []CheckoutItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	// Pending→Confirmed 只能走确认协议
	err = e.svc.SetStatus(context.Background(), o.ID, domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, e.svc.SetStatus(context.Background(), o.ID, domain.StatusCancelled))
	got, err := e.orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	// 取消不回补库存
	assert.Equal(t, 10, e.stockOf(t, "p1", ""))

	err = e.svc.SetStatus(context.Background(), o.ID, domain.StatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = e.svc.SetStatus(context.Background(), "missing", domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
