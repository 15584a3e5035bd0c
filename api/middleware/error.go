package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/treaty-aligner/api/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误类别，写入日志的 error_type 字段
const (
	ErrorTypeValidation = "VALIDATION_ERROR"
	ErrorTypeNotFound   = "NOT_FOUND_ERROR"
	ErrorTypeInternal   = "INTERNAL_ERROR"
	ErrorTypeExtraction = "EXTRACTION_ERROR"
)

// AppError 处理器上报给错误中间件的错误
type AppError struct {
	Type    string
	Message string
	Details string // 附加信息，放在响应的 data.details 中
	Code    int    // HTTP状态码
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(kind string, code int, message string, details []string) AppError {
	return AppError{
		Type:    kind,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    code,
	}
}

// NewValidationError 请求参数或上传文件不合法
func NewValidationError(message string, details ...string) AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewRequestTooLargeError 请求体超过上传大小上限
func NewRequestTooLargeError(details ...string) AppError {
	return newAppError(ErrorTypeValidation, http.StatusRequestEntityTooLarge, "request body too large", details)
}

// NewNotFoundError 路由或资源不存在
func NewNotFoundError(message string) AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, nil)
}

// NewInternalError 服务端内部错误
func NewInternalError(message string, details ...string) AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewExtractionError 文档提取失败，状态码由调用方根据错误类别决定
func NewExtractionError(code int, message string, details ...string) AppError {
	return newAppError(ErrorTypeExtraction, code, message, details)
}

// ErrorMiddleware 把处理器通过 HandleError 记录的错误和 panic 转成统一的响应
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer recoverPanic(c)

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		traceID := GetTraceID(c)
		fields := logrus.Fields{
			FieldTraceID: traceID,
			FieldPath:    c.Request.URL.Path,
		}

		var appErr AppError
		var appErrPtr *AppError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &appErrPtr):
			appErr = *appErrPtr
		default:
			log.WithFields(fields).Error(err.Error())
			message := "Internal server error"
			if gin.Mode() == gin.DebugMode {
				message = err.Error()
			}
			resp := model.NewErrorResponse(http.StatusInternalServerError, message)
			resp.TraceID = traceID
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			return
		}

		fields["error_type"] = appErr.Type
		if appErr.Details != "" {
			fields["details"] = appErr.Details
		}
		entry := log.WithFields(fields)
		if appErr.Code >= http.StatusInternalServerError {
			entry.Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		resp := model.NewErrorResponse(appErr.Code, appErr.Message)
		resp.TraceID = traceID
		if appErr.Details != "" {
			resp.Data = gin.H{"details": appErr.Details}
		}
		c.AbortWithStatusJSON(appErr.Code, resp)
	}
}

// recoverPanic 捕获处理器中的 panic 并返回 500
func recoverPanic(c *gin.Context) {
	r := recover()
	if r == nil {
		return
	}

	log.WithFields(logrus.Fields{
		FieldError: r,
		"stack":    string(debug.Stack()),
		FieldPath:  c.Request.URL.Path,
	}).Error("Panic recovered in API request")

	resp := model.NewErrorResponse(http.StatusInternalServerError, "An unexpected error occurred")
	if gin.Mode() == gin.DebugMode {
		resp.Message = fmt.Sprintf("Panic: %v", r)
	}
	resp.TraceID = GetTraceID(c)
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
}

// HandleError 记录错误，由 ErrorMiddleware 统一输出
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
