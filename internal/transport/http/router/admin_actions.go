package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/catalog"
	"go-club-store/internal/feature/order"
	"go-club-store/internal/feature/user"
	httpez "go-club-store/internal/transport/http/ez"
)

// asEzErr 领域错误 → 带状态的接口错误
func asEzErr(err error, fallback string) error {
	var dup *domain.DuplicateTransactionError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return httpez.BadRequest(err.Error())
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		return httpez.NotFound(err.Error())
	case errors.As(err, &dup):
		return httpez.Conflict(err.Error())
	default:
		return httpez.Internal(fallback, err)
	}
}

func mountOrderActions(admin *gin.RouterGroup, svc *order.Service) {
	ez := httpez.New(admin)

	type listQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	type listOut struct {
		Total int64          `json:"total"`
		Items []domain.Order `json:"items"`
	}
	httpez.RegisterAction[listQ, listOut](ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			items, total, err := svc.List(c.Request.Context(), in.Offset, in.Limit)
			if err != nil {
				return listOut{}, httpez.Internal("list orders failed", err)
			}
			return listOut{Total: total, Items: items}, nil
		},
	})

	// 改状态不碰库存：取消/删除已确认订单也不回补，缺多少人工对账
	type statusIn struct {
		ID     string             `json:"_id" binding:"required"`
		Status domain.OrderStatus `json:"status" binding:"required"`
	}
	httpez.RegisterAction[statusIn, gin.H](ez, httpez.Action[statusIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/orders",
		Handler: func(c *gin.Context, in *statusIn) (gin.H, error) {
			if err := svc.SetStatus(c.Request.Context(), in.ID, in.Status); err != nil {
				return nil, asEzErr(err, "update status failed")
			}
			return gin.H{"id": in.ID, "status": in.Status, "stockRestored": false}, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/orders/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			if err := svc.AdminDelete(c.Request.Context(), id); err != nil {
				return nil, asEzErr(err, "delete order failed")
			}
			return gin.H{"id": id, "stockRestored": false}, nil
		},
	})
}

func mountProductActions(admin *gin.RouterGroup, svc *catalog.Service) {
	ez := httpez.New(admin)

	httpez.RegisterAction[struct{}, []domain.Product](ez, httpez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
			ps, err := svc.ListAdmin(c.Request.Context())
			if err != nil {
				return nil, httpez.Internal("list products failed", err)
			}
			return ps, nil
		},
	})

	httpez.RegisterAction[catalog.ProductInput, *domain.Product](ez, httpez.Action[catalog.ProductInput, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *catalog.ProductInput) (*domain.Product, error) {
			p, err := svc.Create(c.Request.Context(), *in)
			if err != nil {
				return nil, asEzErr(err, "create product failed")
			}
			return p, nil
		},
	})

	httpez.RegisterAction[catalog.ProductInput, *domain.Product](ez, httpez.Action[catalog.ProductInput, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Handler: func(c *gin.Context, in *catalog.ProductInput) (*domain.Product, error) {
			p, err := svc.Update(c.Request.Context(), c.Param("id"), *in)
			if err != nil {
				return nil, asEzErr(err, "update product failed")
			}
			return p, nil
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := svc.Delete(c.Request.Context(), id); err != nil {
				return nil, asEzErr(err, "delete product failed")
			}
			return gin.H{"id": id}, nil
		},
	})
}

func mountUserActions(admin *gin.RouterGroup, svc *user.Service) {
	ez := httpez.New(admin)

	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 email/name 模糊搜
	}
	type row struct {
		ID          string     `json:"id"`
		Email       string     `json:"email"`
		Name        string     `json:"name"`
		Role        string     `json:"role"`
		BannedUntil *time.Time `json:"bannedUntil,omitempty"`
		CreatedAt   time.Time  `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	httpez.RegisterAction[listQ, listOut](ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			us, total, err := svc.List(c.Request.Context(), in.Offset, in.Limit, in.Q)
			if err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
					BannedUntil: u.BannedUntil, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	type banIn struct {
		Hours int `json:"hours" binding:"required,gt=0"`
	}
	httpez.RegisterAction[banIn, gin.H](ez, httpez.Action[banIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Handler: func(c *gin.Context, in *banIn) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			until, err := svc.Ban(c.Request.Context(), id, time.Duration(in.Hours)*time.Hour)
			if err != nil {
				return nil, httpez.NotFound("user not found")
			}
			return gin.H{"id": id, "bannedUntil": until}, nil
		},
	})
}
