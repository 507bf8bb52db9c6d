package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-club-store/internal/core/auth"
	"go-club-store/internal/domain"
	"go-club-store/pkg/utils"
)

var ErrBadCredentials = errors.New("invalid credentials")

type Service struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewService(users domain.UserRepository, jwter *auth.JWTer) *Service {
	return &Service{users: users, jwter: jwter}
}

type LoginResult struct {
	Token string       `json:"token"`
	IsNew bool         `json:"isNew"`
	User  *domain.User `json:"user"`
}

// Login 查不到就自动注册 + 发 JWT；封禁未到期直接拒绝
func (s *Service) Login(ctx context.Context, email, password, name string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	isNew := false
	if u == nil {
		if name == "" {
			if at := strings.IndexByte(email, '@'); at > 0 {
				name = email[:at]
			} else {
				name = "user"
			}
		}
		u = &domain.User{
			ID:           utils.NewID(),
			Email:        email,
			Name:         name,
			PasswordHash: utils.HashPassword(password),
			Role:         "user",
		}
		if err := s.users.Create(ctx, u); err != nil {
			// 并发兜底：唯一冲突 → 再查一次按已存在处理
			if u, err = s.users.FindByEmail(ctx, email); err != nil || u == nil {
				return nil, ErrBadCredentials
			}
		} else {
			isNew = true
		}
	}
	if !isNew && !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrBadCredentials
	}
	if u.Banned(time.Now()) {
		return nil, domain.ErrUserBanned
	}
	tok, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil || tok == "" {
		return nil, errors.New("issue token failed")
	}
	return &LoginResult{Token: tok, IsNew: isNew, User: u}, nil
}

func (s *Service) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, offset, limit, q)
}

// Ban 封禁到 now+d；到期由 Sweeper 清理
func (s *Service) Ban(ctx context.Context, id string, d time.Duration) (time.Time, error) {
	until := time.Now().Add(d)
	return until, s.users.Ban(ctx, id, until)
}
