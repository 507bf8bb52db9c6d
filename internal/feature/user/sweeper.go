package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-club-store/internal/domain"
)

// Sweeper 定时清理到期封禁。尽力而为：单轮失败只记日志，下一轮再试，
// 绝不影响订单/库存路径。
type Sweeper struct {
	users    domain.UserRepository
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(users domain.UserRepository, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{users: users, interval: interval, log: log}
}

func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.users.ClearExpiredBans(ctx, time.Now())
			if err != nil {
				s.log.Warn("ban sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("ban sweep cleared", zap.Int64("count", n))
			}
		}
	}
}
