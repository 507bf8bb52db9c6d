package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-club-store/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update 基础字段 + 整体替换分尺码行（后台编辑是全量表单提交）
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{}).Where("id = ?", p.ID).
			Updates(map[string]any{
				"name":      p.Name,
				"category":  p.Category,
				"price":     p.Price,
				"size_type": p.SizeType,
				"stock":     p.Stock,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductStock{}).Error; err != nil {
			return err
		}
		for i := range p.Sizes {
			p.Sizes[i].ID = 0
			p.Sizes[i].ProductID = p.ID
		}
		if len(p.Sizes) > 0 {
			if err := tx.Create(&p.Sizes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductStock{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		return nil
	})
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Sizes").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var ps []domain.Product
	err := r.db.WithContext(ctx).Preload("Sizes").Where("id IN ?", ids).Find(&ps).Error
	return ps, err
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	err := r.db.WithContext(ctx).Preload("Sizes").Order("category, name").Find(&ps).Error
	return ps, err
}

// Deduct 并发关键原语：比较和扣减在同一条 UPDATE 里，数量永不为负。
// RowsAffected=0 时补一次读仅为区分“商品不存在”与“库存不足”，不影响正确性。
func (r *ProductRepo) Deduct(ctx context.Context, productID, size string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	var res *gorm.DB
	if size == "" {
		res = r.db.WithContext(ctx).Model(&domain.Product{}).
			Where("id = ? AND size_type = ? AND stock >= ?", productID, domain.SizeTypeNone, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	} else {
		res = r.db.WithContext(ctx).Model(&domain.ProductStock{}).
			Where("product_id = ? AND size = ? AND quantity >= ?", productID, size, qty).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if size == "" {
		r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", productID).Count(&n)
	} else {
		r.db.WithContext(ctx).Model(&domain.ProductStock{}).
			Where("product_id = ? AND size = ?", productID, size).Count(&n)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}
