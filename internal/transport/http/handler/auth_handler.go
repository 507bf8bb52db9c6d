package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-club-store/internal/domain"
	"go-club-store/internal/feature/user"
	resp "go-club-store/internal/transport/http/response"
)

type AuthHandler struct {
	svc *user.Service
	log *zap.Logger
}

func NewAuthHandler(svc *user.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"omitempty,max=64"` // 首次注册可用
}

// Login POST /auth/login 查不到就自动注册 + 发 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid credentials"))
		case errors.Is(err, domain.ErrUserBanned):
			c.JSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "account banned"))
		default:
			h.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "storage unavailable"))
		}
		return
	}
	u := res.User
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"token": res.Token,
		"isNew": res.IsNew,
		"user":  gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role},
	}))
}
