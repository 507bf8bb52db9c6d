package domain

import (
	"errors"
	"fmt"
)

// 业务错误集中定义，transport 层负责映射到 HTTP 状态码
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order not pending")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateReference = errors.New("duplicate reference")
	ErrUserBanned         = errors.New("user banned")
)

// DuplicateTransactionError 交易号已被其它订单占用（带冲突订单 id，便于人工客服处理）
type DuplicateTransactionError struct {
	TransactionID string
	OrderID       string
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("transaction %s already used by order %s", e.TransactionID, e.OrderID)
}
