// Package ez 类型安全的接口注册小工具：绑定、角色校验、错误到响应的映射
// 都收敛在一处，action 本体只写业务。
package ez

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-club-store/internal/transport/http/response"
)

type Ez struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) *Ez { return &Ez{g: g} }

type Binder func(c *gin.Context, in any) error

func BindJSON(c *gin.Context, in any) error  { return c.ShouldBindJSON(in) }
func BindQuery(c *gin.Context, in any) error { return c.ShouldBindQuery(in) }
func BindNone(*gin.Context, any) error       { return nil }

type Action[In, Out any] struct {
	Method string
	Path   string
	Binder Binder
	Roles  []string // 非空则要求上下文角色命中其一（分组中间件已写入 role）
	Status int      // 成功状态码，默认 200

	Handler func(c *gin.Context, in *In) (Out, error)
}

func RegisterAction[In, Out any](e *Ez, a Action[In, Out]) {
	if a.Binder == nil {
		a.Binder = BindJSON
	}
	if a.Status == 0 {
		a.Status = http.StatusOK
	}
	e.g.Handle(a.Method, a.Path, func(c *gin.Context) {
		if len(a.Roles) > 0 {
			role := c.GetString("role")
			ok := false
			for _, r := range a.Roles {
				if r == role {
					ok = true
					break
				}
			}
			if !ok {
				c.JSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}
		var in In
		if err := a.Binder(c, &in); err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(a.Status, resp.OK(out))
	})
}

// apiError 带 HTTP 状态的业务错误
type apiError struct {
	status int
	code   int
	msg    string
	cause  error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}
func (e *apiError) Unwrap() error { return e.cause }

func BadRequest(msg string) error          { return &apiError{http.StatusBadRequest, resp.CodeBadRequest, msg, nil} }
func Unauthorized(msg string) error        { return &apiError{http.StatusUnauthorized, resp.CodeUnauthorized, msg, nil} }
func Forbidden(msg string) error           { return &apiError{http.StatusForbidden, resp.CodeForbidden, msg, nil} }
func NotFound(msg string) error            { return &apiError{http.StatusNotFound, resp.CodeNotFound, msg, nil} }
func Conflict(msg string) error            { return &apiError{http.StatusConflict, resp.CodeConflict, msg, nil} }
func Internal(msg string, err error) error { return &apiError{http.StatusInternalServerError, resp.CodeServerError, msg, err} }

// WriteError apiError 按自带状态输出，其余一律 500（不泄露内部细节）
func WriteError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		c.JSON(ae.status, resp.Error(ae.code, ae.msg))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
}
