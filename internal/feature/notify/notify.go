package notify

import (
	"context"

	"go.uber.org/zap"

	"go-club-store/internal/domain"
)

// Notifier 确认后的买家通知。调用方一律异步调用、失败只记日志，
// 通知失败绝不能影响订单/库存结果。
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *domain.Order) error
}

// LogNotifier 未接邮件网关时的兜底实现：只落日志
type LogNotifier struct{ log *zap.Logger }

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) OrderConfirmed(_ context.Context, o *domain.Order) error {
	email := ""
	if o.CustomerEmail != nil {
		email = *o.CustomerEmail
	}
	n.log.Info("order confirmed notice",
		zap.String("order_id", o.ID),
		zap.String("reference", o.Reference),
		zap.String("email", email),
		zap.Int64("total", o.Total),
	)
	return nil
}
