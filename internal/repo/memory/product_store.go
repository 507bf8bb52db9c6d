package memory

import (
	"context"
	"sync"

	"go-club-store/internal/domain"
)

type ProductStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]*domain.Product)}
}

var _ domain.ProductRepository = (*ProductStore)(nil)

func (s *ProductStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *ProductStore) Update(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProduct(s.products[id]), nil
}

func (s *ProductStore) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p := s.products[id]; p != nil {
			out = append(out, *cloneProduct(p))
		}
	}
	return out, nil
}

func (s *ProductStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *cloneProduct(p))
	}
	return out, nil
}

// Deduct 比较和扣减在同一临界区内，与 SQL 版的单条条件 UPDATE 等价
func (s *ProductStore) Deduct(_ context.Context, productID, size string, qty int) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	if p == nil {
		return domain.ErrProductNotFound
	}
	if size == "" {
		if p.SizeType != domain.SizeTypeNone {
			return domain.ErrProductNotFound
		}
		if p.Stock < qty {
			return domain.ErrInsufficientStock
		}
		p.Stock -= qty
		return nil
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			if p.Sizes[i].Quantity < qty {
				return domain.ErrInsufficientStock
			}
			p.Sizes[i].Quantity -= qty
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Sizes = append([]domain.ProductStock(nil), p.Sizes...)
	return &c
}
