// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"drafting-wizard-go/internal/service"
	"drafting-wizard-go/pkg/log"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"code":    status,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// statusFor 把业务错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrProtected):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError 输出错误响应。500 时不把内部错误细节返回给客户端。
func respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", op, err)
		respond(c, status, "服务器内部错误", nil)
		return
	}
	log.Warnf("%s: %v", op, err)
	respond(c, status, err.Error(), nil)
}

// badRequest 输出请求体校验失败的响应。
func badRequest(c *gin.Context, op string, err error) {
	log.Warnf("%s: Invalid request payload, error: %v", op, err)
	respond(c, http.StatusBadRequest, "无效的请求负载: "+err.Error(), nil)
}
