package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
)

type ErrorMonitor struct {
	errorCounts map[errors.ErrorCode]int
	analytics   *errors.ErrorAnalytics
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[errors.ErrorCode]int),
		analytics:   errors.NewErrorAnalytics(),
	}
}

func (m *ErrorMonitor) RecordError(err error, c *gin.Context) {
	if appErr, ok := err.(*errors.AppError); ok {
		m.mu.Lock()
		m.errorCounts[appErr.Code]++
		m.mu.Unlock()
	}
	m.analytics.Record(errors.NewTracedError(err, errors.ErrorContext{
		UserID: c.GetInt("user_id"),
		Path:   c.Request.URL.Path,
		Method: c.Request.Method,
	}))
}

func (m *ErrorMonitor) GetErrorCounts() map[errors.ErrorCode]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[errors.ErrorCode]int)
	for code, count := range m.errorCounts {
		counts[code] = count
	}
	return counts
}

// GetStats 返回聚合的错误统计，仅在调试模式下通过诊断路由暴露
func (m *ErrorMonitor) GetStats() map[string]interface{} {
	return m.analytics.GetStats()
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				monitor.RecordError(e.Err, c)
				// 记录错误日志
				if appErr, ok := e.Err.(*errors.AppError); ok {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(appErr.Code)),
						zap.String("error_message", appErr.Message),
						zap.Error(appErr.Err),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				}
			}
		}
	}
}
