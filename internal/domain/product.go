package domain

import (
	"context"
	"time"
)

type SizeType string

const (
	SizeTypeNone     SizeType = "none"     // 不分尺码，用 Product.Stock
	SizeTypeClothing SizeType = "clothing" // S/M/L/XL...
	SizeTypeWaist    SizeType = "waist"    // 28/30/32...
)

func (s SizeType) Valid() bool {
	return s == SizeTypeNone || s == SizeTypeClothing || s == SizeTypeWaist
}

// Product 价格用最小货币单位（paise），杜绝浮点
type Product struct {
	ID       string   `gorm:"primaryKey;size:36" json:"id"`
	Name     string   `gorm:"size:128;not null" json:"name"`
	Category string   `gorm:"size:64;index" json:"category"`
	Price    int64    `gorm:"not null" json:"price"`
	SizeType SizeType `gorm:"size:16;not null;default:none" json:"sizeType"`

	// SizeType=none 时的平铺库存；分尺码库存见 Sizes
	Stock int            `gorm:"not null;default:0" json:"stock"`
	Sizes []ProductStock `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// ProductStock 分尺码库存，(product_id, size) 唯一
type ProductStock struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID string `gorm:"size:36;uniqueIndex:uq_product_size;not null" json:"-"`
	Size      string `gorm:"size:16;uniqueIndex:uq_product_size;not null" json:"size"`
	Quantity  int    `gorm:"not null;default:0" json:"quantity"`
}

func (ProductStock) TableName() string { return "product_stocks" }

// StockFor 读指定尺码（size 为空表示平铺库存）；第二返回值表示该条目是否存在
func (p *Product) StockFor(size string) (int, bool) {
	if p.SizeType == SizeTypeNone {
		if size != "" {
			return 0, false
		}
		return p.Stock, true
	}
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity, true
		}
	}
	return 0, false
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context) ([]Product, error)

	// Deduct 条件扣减：仅当现有数量 >= qty 时一条语句完成，绝不先读后写。
	// 返回 ErrInsufficientStock / ErrProductNotFound。
	Deduct(ctx context.Context, productID, size string, qty int) error
}
