package order

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/inventory"
	"go-club-store/internal/feature/notify"
	"go-club-store/pkg/utils"
)

// PhoneNotProvided phone 可选时的占位值
const PhoneNotProvided = "not provided"

// 引用号撞唯一索引的重试上限（空间 31^10，基本撞不上）
const createRetries = 5

type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	inv      *inventory.Service
	notifier notify.Notifier
	log      *zap.Logger
}

func NewService(orders domain.OrderRepository, products domain.ProductRepository,
	inv *inventory.Service, notifier notify.Notifier, log *zap.Logger) *Service {
	return &Service{orders: orders, products: products, inv: inv, notifier: notifier, log: log}
}

type CheckoutItem struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// Checkout 购物车 → Pending 占位单。总价一律按 products 表现价重算，
// 客户端报价只作展示。不碰库存。
func (s *Service) Checkout(ctx context.Context, items []CheckoutItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", domain.ErrInvalidInput)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", domain.ErrInvalidInput, it.ProductID)
		}
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var total int64
	lines := make(domain.OrderItems, 0, len(items))
	for _, it := range items {
		p := byID[it.ProductID]
		if p == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, it.ProductID)
		}
		size := strings.TrimSpace(it.Size)
		if p.SizeType == domain.SizeTypeNone {
			size = ""
		} else {
			if size == "" {
				return nil, fmt.Errorf("%w: size required for product %s", domain.ErrInvalidInput, p.ID)
			}
			if _, ok := p.StockFor(size); !ok {
				return nil, fmt.Errorf("%w: unknown size %s for product %s", domain.ErrInvalidInput, size, p.ID)
			}
		}
		lines = append(lines, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Size:      size,
			SizeType:  p.SizeType,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
		total += p.Price * int64(it.Quantity)
	}

	for i := 0; i < createRetries; i++ {
		o := &domain.Order{
			ID:        utils.NewID(),
			Reference: utils.NewReference(),
			Items:     lines,
			Total:     total,
			Status:    domain.StatusPending,
		}
		err := s.orders.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if err != domain.ErrDuplicateReference {
			return nil, err
		}
	}
	return nil, fmt.Errorf("reference generation exhausted after %d attempts", createRetries)
}

// CancelPending 客户端放弃结账时删掉占位单；只允许删 Pending
func (s *Service) CancelPending(ctx context.Context, id string) error {
	return s.orders.DeletePending(ctx, id)
}

// ---- 后台操作：不碰库存（取消/删除已确认订单也不回补，见管理端文案） ----

func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.List(ctx, offset, limit)
}

// SetStatus 按流转表校验；Confirmed 只能由确认协议写入，表里没有这条边
func (s *Service) SetStatus(ctx context.Context, id string, st domain.OrderStatus) error {
	if !st.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, st)
	}
	cur, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrOrderNotFound
	}
	if !domain.CanTransition(cur.Status, st) {
		return fmt.Errorf("%w: cannot move %s order to %s", domain.ErrInvalidInput, cur.Status, st)
	}
	return s.orders.UpdateStatus(ctx, id, st)
}

func (s *Service) AdminDelete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

type ConfirmInput struct {
	Reference     string `json:"reference" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
}

type ConfirmResult struct {
	Order           *domain.Order            `json:"order"`
	StockShortfalls []inventory.DeductResult `json:"stockShortfalls,omitempty"`
}

// Confirm 付款确认协议：
//  1. 校验入参，引用号/交易号只做 trim（不透明 token，大小写保留）
//  2. 交易号全局查重（预检给友好报错；正确性靠唯一索引）
//  3. 按引用号定位 Pending 且无客户信息的占位单
//  4. 原子翻转 Pending→Confirmed，同时写入交易号与客户信息
//  5. 成功后逐行扣库存（尽力而为），缺口记录但绝不撤销确认
func (s *Service) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	ref := strings.TrimSpace(in.Reference)
	txn := strings.TrimSpace(in.TransactionID)
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if ref == "" || txn == "" || name == "" || email == "" {
		return nil, fmt.Errorf("%w: reference, transactionId, name and email are required", domain.ErrInvalidInput)
	}
	if phone == "" {
		phone = PhoneNotProvided
	}

	if existing, err := s.orders.FindByTransactionID(ctx, txn); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.DuplicateTransactionError{TransactionID: txn, OrderID: existing.ID}
	}

	target, err := s.orders.FindPendingByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrOrderNotFound
	}

	confirmed, err := s.orders.ConfirmOrder(ctx, target.ID, txn, domain.Customer{
		Name: name, Email: email, Phone: phone,
	})
	if err != nil {
		return nil, err
	}

	results := s.inv.DeductBatch(ctx, deductItems(confirmed.Items))
	shortfalls := inventory.Shortfalls(results)
	for _, sf := range shortfalls {
		s.log.Warn("stock shortfall on confirmation",
			zap.String("order_id", confirmed.ID),
			zap.String("reference", confirmed.Reference),
			zap.String("product_id", sf.ProductID),
			zap.String("size", sf.Size),
			zap.String("reason", sf.Reason),
		)
	}

	if s.notifier != nil {
		o := *confirmed
		go func() {
			if err := s.notifier.OrderConfirmed(context.Background(), &o); err != nil {
				s.log.Warn("confirmation notice failed", zap.String("order_id", o.ID), zap.Error(err))
			}
		}()
	}

	return &ConfirmResult{Order: confirmed, StockShortfalls: shortfalls}, nil
}

func deductItems(items domain.OrderItems) []inventory.DeductItem {
	out := make([]inventory.DeductItem, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.DeductItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			SizeType:  it.SizeType,
			Quantity:  it.Quantity,
		})
	}
	return out
}
