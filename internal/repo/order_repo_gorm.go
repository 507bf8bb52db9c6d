package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-club-store/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create 引用号撞唯一索引时返回 ErrDuplicateReference，调用方换号重试
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) FindByReference(ctx context.Context, ref string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "reference = ?", ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) FindByTransactionID(ctx context.Context, txn string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "transaction_id = ?", txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) FindPendingByReference(ctx context.Context, ref string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		First(&o, "reference = ? AND status = ? AND customer_email IS NULL", ref, domain.StatusPending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

// ConfirmOrder 单条条件更新完成 Pending→Confirmed：前置条件和写入在同一条语句里，
// 两个并发确认最多一个 RowsAffected=1。交易号唯一索引兜底重复提交的竞态。
func (r *OrderRepo) ConfirmOrder(ctx context.Context, id, transactionID string, cust domain.Customer) (*domain.Order, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":         domain.StatusConfirmed,
			"transaction_id": transactionID,
			"customer_name":  cust.Name,
			"customer_email": cust.Email,
			"customer_phone": cust.Phone,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		if isDupKey(res.Error) {
			dup := &domain.DuplicateTransactionError{TransactionID: transactionID}
			if o, err := r.FindByTransactionID(ctx, transactionID); err == nil && o != nil {
				dup.OrderID = o.ID
			}
			return nil, dup
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrOrderNotPending
	}
	return r.FindByID(ctx, id)
}

// UpdateStatus 后台改状态；刻意不动库存（取消/完成都不回补，见管理端提示文案）
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete 后台删除；同样不回补库存
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeletePending 无鉴权自助撤单只允许删 Pending 占位，条件写在同一条 DELETE 里
func (r *OrderRepo) DeletePending(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Delete(&domain.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Order{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
