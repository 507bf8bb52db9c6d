package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusCompleted  OrderStatus = "Completed"
	StatusCancelled  OrderStatus = "Cancelled"
)

// validNext 后台可执行的状态流转；Pending→Confirmed 只能走确认协议，不在表里
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusShipped: true, StatusCompleted: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCompleted: true, StatusCancelled: true},
	StatusShipped:    {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to OrderStatus) bool { return validNext[from][to] }

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrderItem 下单时的商品快照（名称/单价定格，后续改价不影响已建订单）
type OrderItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Size      string   `json:"size,omitempty"`
	SizeType  SizeType `json:"sizeType"`
	Quantity  int      `json:"quantity"`
	Price     int64    `json:"price"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Order struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Reference string `gorm:"uniqueIndex;size:16;not null" json:"reference"`

	// 确认前为 NULL；唯一索引兜底并发下的全局唯一（NULL 不参与唯一约束）
	TransactionID *string `gorm:"uniqueIndex;size:64" json:"transactionId,omitempty"`

	Items OrderItems `gorm:"serializer:json;type:json" json:"items"`
	Total int64      `gorm:"not null" json:"total"`

	CustomerName  *string `gorm:"size:64" json:"customerName,omitempty"`
	CustomerEmail *string `gorm:"size:255" json:"customerEmail,omitempty"`
	CustomerPhone *string `gorm:"size:32" json:"customerPhone,omitempty"`

	Status    OrderStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

type OrderItems []OrderItem

// Customer nil 表示尚未提交付款人信息（Pending 占位单）
func (o *Order) Customer() *Customer {
	if o.CustomerEmail == nil {
		return nil
	}
	c := Customer{Email: *o.CustomerEmail}
	if o.CustomerName != nil {
		c.Name = *o.CustomerName
	}
	if o.CustomerPhone != nil {
		c.Phone = *o.CustomerPhone
	}
	return &c
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByReference(ctx context.Context, ref string) (*Order, error)
	FindByTransactionID(ctx context.Context, txn string) (*Order, error)

	// FindPendingByReference 只命中 status=Pending 且 customer 为空的占位单
	FindPendingByReference(ctx context.Context, ref string) (*Order, error)

	// ConfirmOrder 系统里唯一的原子状态迁移：status=Pending 为前置条件的单条
	// 条件更新。失败返回 ErrOrderNotPending；交易号撞唯一索引返回
	// *DuplicateTransactionError。成功返回更新后的订单。
	ConfirmOrder(ctx context.Context, id, transactionID string, cust Customer) (*Order, error)

	// UpdateStatus / Delete 为后台操作，明确不回补库存（含已确认订单）
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	Delete(ctx context.Context, id string) error

	// DeletePending 仅删除 Pending 占位单（无鉴权的自助撤单走这里）
	DeletePending(ctx context.Context, id string) error

	List(ctx context.Context, offset, limit int) ([]Order, int64, error)
}
