// Package memory 提供测试用的内存实现，语义与 gorm 版一致：
// 条件更新一把锁内完成，交易号/引用号唯一性同样强制。
package memory

import (
	"context"
	"sync"
	"time"

	"go-club-store/internal/domain"
)

type OrderStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	byRef  map[string]string // reference -> order id
	byTxn  map[string]string // transaction id -> order id
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*domain.Order),
		byRef:  make(map[string]string),
		byTxn:  make(map[string]string),
	}
}

var _ domain.OrderRepository = (*OrderStore)(nil)

func (s *OrderStore) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[o.Reference]; ok {
		return domain.ErrDuplicateReference
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	s.orders[o.ID] = cloneOrder(o)
	s.byRef[o.Reference] = o.ID
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id]), nil
}

func (s *OrderStore) FindByReference(_ context.Context, ref string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[s.byRef[ref]]), nil
}

func (s *OrderStore) FindByTransactionID(_ context.Context, txn string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[s.byTxn[txn]]), nil
}

func (s *OrderStore) FindPendingByReference(_ context.Context, ref string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[s.byRef[ref]]
	if o == nil || o.Status != domain.StatusPending || o.CustomerEmail != nil {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) ConfirmOrder(_ context.Context, id, transactionID string, cust domain.Customer) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	if o == nil || o.Status != domain.StatusPending {
		return nil, domain.ErrOrderNotPending
	}
	if holder, ok := s.byTxn[transactionID]; ok {
		return nil, &domain.DuplicateTransactionError{TransactionID: transactionID, OrderID: holder}
	}
	name, email, phone := cust.Name, cust.Email, cust.Phone
	o.Status = domain.StatusConfirmed
	o.TransactionID = &transactionID
	o.CustomerName, o.CustomerEmail, o.CustomerPhone = &name, &email, &phone
	o.UpdatedAt = time.Now()
	s.byTxn[transactionID] = id
	return cloneOrder(o), nil
}

func (s *OrderStore) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	if o == nil {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (s *OrderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id, false)
}

func (s *OrderStore) DeletePending(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id, true)
}

func (s *OrderStore) remove(id string, pendingOnly bool) error {
	o := s.orders[id]
	if o == nil {
		return domain.ErrOrderNotFound
	}
	if pendingOnly && o.Status != domain.StatusPending {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	delete(s.byRef, o.Reference)
	if o.TransactionID != nil {
		delete(s.byTxn, *o.TransactionID)
	}
	return nil
}

func (s *OrderStore) List(_ context.Context, offset, limit int) ([]domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		all = append(all, *cloneOrder(o))
	}
	// 新单在前
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].CreatedAt.After(all[i].CreatedAt) {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append(domain.OrderItems(nil), o.Items...)
	return &c
}
