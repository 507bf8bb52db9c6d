package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string     `gorm:"size:64" json:"name"`
	PasswordHash string     `gorm:"size:191" json:"-"`
	Role         string     `gorm:"size:16;default:user" json:"role"` // "user"/"admin"
	BannedUntil  *time.Time `json:"bannedUntil,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Banned 封禁未到期则拒绝登录
func (u *User) Banned(now time.Time) bool {
	return u.BannedUntil != nil && u.BannedUntil.After(now)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
	Ban(ctx context.Context, id string, until time.Time) error

	// ClearExpiredBans 后台定时清理到期封禁，返回清理条数
	ClearExpiredBans(ctx context.Context, now time.Time) (int64, error)
}
