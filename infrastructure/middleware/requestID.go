package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"rollcall.io/application/interfaces"
	"rollcall.io/application/utils"
	"rollcall.io/infrastructure/logger"
)

// RequestContextMiddleware tags every request with a ULID and seeds the
// AppContext that later middlewares and routes read.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-Id")
		if requestID == "" || len(requestID) > 64 {
			requestID = utils.GenerateUULDString()
		}
		ctx.Header("X-Request-Id", requestID)
		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:       ctx,
			Keys:      map[string]any{},
			Header:    ctx.Request.Header,
			RequestID: requestID,
		})

		start := time.Now()
		ctx.Next()
		logger.Info("request handled", logger.LoggerOptions{
			Key:  "requestID",
			Data: requestID,
		}, logger.LoggerOptions{
			Key:  "route",
			Data: ctx.FullPath(),
		}, logger.LoggerOptions{
			Key:  "status",
			Data: ctx.Writer.Status(),
		}, logger.LoggerOptions{
			Key:  "latency",
			Data: time.Since(start).String(),
		})
	}
}
