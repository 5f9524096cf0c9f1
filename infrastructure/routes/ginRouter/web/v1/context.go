package routev1

import (
	"github.com/gin-gonic/gin"
	"rollcall.io/application/interfaces"
)

// requestContext carries what middlewares attached into a typed context.
func requestContext[T any](ctx *gin.Context, body *T) *interfaces.ApplicationContext[T] {
	appContext := &interfaces.ApplicationContext[T]{
		Ctx:    ctx,
		Body:   body,
		Keys:   map[string]any{},
		Header: ctx.Request.Header,
	}
	if existing, ok := ctx.Get("AppContext"); ok {
		if base, ok := existing.(*interfaces.ApplicationContext[any]); ok {
			appContext.Keys = base.Keys
			appContext.RequestID = base.RequestID
		}
	}
	return appContext
}
