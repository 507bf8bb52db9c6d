package inventory

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-club-store/internal/domain"
)

type DeductItem struct {
	ProductID string          `json:"productId" binding:"required"`
	Size      string          `json:"size"`
	SizeType  domain.SizeType `json:"sizeType"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
}

type DeductResult struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
}

const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonProductNotFound   = "product_not_found"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonStorageError      = "storage_error"
)

type Service struct {
	products domain.ProductRepository
	log      *zap.Logger
}

func New(products domain.ProductRepository, log *zap.Logger) *Service {
	return &Service{products: products, log: log}
}

// Deduct 单行扣减。SizeType=none 时忽略传入的 size（平铺库存没有尺码键）。
func (s *Service) Deduct(ctx context.Context, it DeductItem) DeductResult {
	size := it.Size
	if it.SizeType == domain.SizeTypeNone {
		size = ""
	}
	res := DeductResult{ProductID: it.ProductID, Size: size}
	if it.Quantity <= 0 {
		res.Reason = ReasonInvalidQuantity
		return res
	}
	err := s.products.Deduct(ctx, it.ProductID, size, it.Quantity)
	switch {
	case err == nil:
		res.Success = true
	case errors.Is(err, domain.ErrInsufficientStock):
		res.Reason = ReasonInsufficientStock
	case errors.Is(err, domain.ErrProductNotFound):
		res.Reason = ReasonProductNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		res.Reason = ReasonInvalidQuantity
	default:
		s.log.Error("stock deduct failed",
			zap.String("product_id", it.ProductID),
			zap.String("size", size),
			zap.Error(err))
		res.Reason = ReasonStorageError
	}
	return res
}

// DeductBatch 逐行扣减，单行失败不阻断、不回滚其它行（部分履约是既定策略，
// 缺口由人工对账处理）。返回与入参同序的逐行结果。
func (s *Service) DeductBatch(ctx context.Context, items []DeductItem) []DeductResult {
	out := make([]DeductResult, 0, len(items))
	for _, it := range items {
		out = append(out, s.Deduct(ctx, it))
	}
	return out
}

// Shortfalls 过滤出失败行，确认流程只记录这些
func Shortfalls(results []DeductResult) []DeductResult {
	var bad []DeductResult
	for _, r := range results {
		if !r.Success {
			bad = append(bad, r)
		}
	}
	return bad
}
