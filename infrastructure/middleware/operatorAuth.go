package middlewares

import (
	"github.com/gin-gonic/gin"
	"rollcall.io/application/interfaces"
	"rollcall.io/application/middlewares"
	"rollcall.io/infrastructure/auth"
)

func appContext(ctx *gin.Context) *interfaces.ApplicationContext[any] {
	if existing, ok := ctx.Get("AppContext"); ok {
		if appCtx, ok := existing.(*interfaces.ApplicationContext[any]); ok {
			return appCtx
		}
	}
	return &interfaces.ApplicationContext[any]{
		Ctx:    ctx,
		Keys:   map[string]any{},
		Header: ctx.Request.Header,
	}
}

func OperatorAuthenticationMiddleware(tokens *auth.TokenIssuer, roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appCtx, next := middlewares.OperatorAuthenticationMiddleware(appContext(ctx), tokens, roles)
		if next {
			ctx.Set("AppContext", appCtx)
			ctx.Next()
		}
	}
}

func OptionalOperatorMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appCtx, next := middlewares.OptionalOperatorMiddleware(appContext(ctx), tokens)
		if next {
			ctx.Set("AppContext", appCtx)
			ctx.Next()
		}
	}
}
