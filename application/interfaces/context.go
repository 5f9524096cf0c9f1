package interfaces

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApplicationContext carries a request through middlewares into a controller.
type ApplicationContext[T any] struct {
	Ctx       *gin.Context
	Body      *T
	Keys      map[string]any
	Header    http.Header
	Param     map[string]string
	RequestID string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func (ac *ApplicationContext[T]) SetContextData(key string, payload any) {
	if ac.Keys == nil {
		ac.Keys = map[string]any{}
	}
	ac.Keys[key] = payload
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	return ac.Keys[key]
}

func (ac *ApplicationContext[T]) GetStringContextData(key string) string {
	value, _ := ac.Keys[key].(string)
	return value
}

// Context is the request context, cancelled when the client goes away.
func (ac *ApplicationContext[T]) Context() context.Context {
	if ac.Ctx == nil || ac.Ctx.Request == nil {
		return context.Background()
	}
	return ac.Ctx.Request.Context()
}
