package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/repo/memory"
)

func seed(t *testing.T, store *memory.ProductStore, p *domain.Product) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), p))
}

func TestDeductBatchPartialFailure(t *testing.T) {
	store := memory.NewProductStore()
	svc := New(store, zap.NewNop())
	seed(t, store, &domain.Product{ID: "a", SizeType: domain.SizeTypeNone, Stock: 5})
	seed(t, store, &domain.Product{ID: "b", SizeType: domain.SizeTypeNone, Stock: 3})

	results := svc.DeductBatch(context.Background(), []DeductItem{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 10},
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "a", Quantity: 0},
	})
	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.Equal(t, ReasonInsufficientStock, results[1].Reason)
	assert.Equal(t, ReasonProductNotFound, results[2].Reason)
	assert.Equal(t, ReasonInvalidQuantity, results[3].Reason)

	// 失败行不回滚已成功的行
	a, _ := store.FindByID(context.Background(), "a")
	b, _ := store.FindByID(context.Background(), "b")
	assert.Equal(t, 3, a.Stock)
	assert.Equal(t, 3, b.Stock)

	assert.Len(t, Shortfalls(results), 3)
}

func TestDeductSizedStock(t *testing.T) {
	store := memory.NewProductStore()
	svc := New(store, zap.NewNop())
	seed(t, store, &domain.Product{
		ID: "tee", SizeType: domain.SizeTypeClothing,
		Sizes: []domain.ProductStock{
			{ProductID: "tee", Size: "M", Quantity: 4},
			{ProductID: "tee", Size: "L", Quantity: 1},
		},
	})

	res := svc.Deduct(context.Background(), DeductItem{
		ProductID: "tee", Size: "M", SizeType: domain.SizeTypeClothing, Quantity: 3,
	})
	assert.True(t, res.Success)

	res = svc.Deduct(context.Background(), DeductItem{
		ProductID: "tee", Size: "L", SizeType: domain.SizeTypeClothing, Quantity: 2,
	})
	assert.Equal(t, ReasonInsufficientStock, res.Reason)

	// 未登记的尺码按不存在处理
	res = svc.Deduct(context.Background(), DeductItem{
		ProductID: "tee", Size: "S", SizeType: domain.SizeTypeClothing, Quantity: 1,
	})
	assert.Equal(t, ReasonProductNotFound, res.Reason)

	p, _ := store.FindByID(context.Background(), "tee")
	m, _ := p.StockFor("M")
	l, _ := p.StockFor("L")
	assert.Equal(t, 1, m)
	assert.Equal(t, 1, l)
}

// 并发扣减下库存绝不为负：成功次数 == 初始库存
func TestDeductConcurrentNeverNegative(t *testing.T) {
	store := memory.NewProductStore()
	svc := New(store, zap.NewNop())
	const initial = 50
	seed(t, store, &domain.Product{ID: "hot", SizeType: domain.SizeTypeNone, Stock: initial})

	const workers = 100
	var wg sync.WaitGroup
	results := make([]DeductResult, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Deduct(context.Background(), DeductItem{ProductID: "hot", Quantity: 1})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			assert.Equal(t, ReasonInsufficientStock, r.Reason)
		}
	}
	assert.Equal(t, initial, ok)

	p, _ := store.FindByID(context.Background(), "hot")
	assert.Equal(t, 0, p.Stock)
}
