package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-club-store/internal/core/cache"
	"go-club-store/internal/domain"
	"go-club-store/pkg/utils"
)

const (
	listKey = "catalog:products"
	listTTL = 30 * time.Second
)

type Service struct {
	products domain.ProductRepository
	cache    *cache.Cache // 可为 nil（测试 / 未配置 redis）
	log      *zap.Logger
}

func NewService(products domain.ProductRepository, c *cache.Cache, log *zap.Logger) *Service {
	return &Service{products: products, cache: c, log: log}
}

// List 店面商品列表，读穿 redis（singleflight 合并回源）
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache == nil {
		return s.products.List(ctx)
	}
	out, err := cache.GetOrLoadJSON[[]domain.Product](s.cache, ctx, listKey, listTTL,
		func(ctx context.Context) (*[]domain.Product, error) {
			ps, err := s.products.List(ctx)
			if err != nil {
				return nil, err
			}
			return &ps, nil
		})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return *out, nil
}

type ProductInput struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category"`
	Price    int64           `json:"price" binding:"required,gt=0"`
	SizeType domain.SizeType `json:"sizeType"`
	Stock    int             `json:"stock" binding:"gte=0"`
	Sizes    []SizeStock     `json:"sizes"`
}

type SizeStock struct {
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"`
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := buildProduct(utils.NewID(), in)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := buildProduct(id, in)
	if err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.products.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListAdmin(ctx context.Context) ([]domain.Product, error) {
	// 后台不走缓存，所见即库里
	return s.products.List(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listKey); err != nil {
		// 缓存失效失败最多让列表旧 30s，记日志即可
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func buildProduct(id string, in ProductInput) (*domain.Product, error) {
	st := in.SizeType
	if st == "" {
		st = domain.SizeTypeNone
	}
	if !st.Valid() {
		return nil, fmt.Errorf("%w: bad sizeType %q", domain.ErrInvalidInput, in.SizeType)
	}
	p := &domain.Product{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Price:    in.Price,
		SizeType: st,
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if p.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if st == domain.SizeTypeNone {
		if in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrInvalidInput)
		}
		p.Stock = in.Stock
		return p, nil
	}
	seen := map[string]bool{}
	for _, sz := range in.Sizes {
		size := strings.TrimSpace(sz.Size)
		if size == "" || sz.Quantity < 0 {
			return nil, fmt.Errorf("%w: bad size row", domain.ErrInvalidInput)
		}
		if seen[size] {
			return nil, fmt.Errorf("%w: duplicate size %s", domain.ErrInvalidInput, size)
		}
		seen[size] = true
		p.Sizes = append(p.Sizes, domain.ProductStock{ProductID: id, Size: size, Quantity: sz.Quantity})
	}
	if len(p.Sizes) == 0 {
		return nil, fmt.Errorf("%w: sized product needs at least one size", domain.ErrInvalidInput)
	}
	return p, nil
}
