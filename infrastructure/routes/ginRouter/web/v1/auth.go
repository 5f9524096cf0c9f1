package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/controller/dto"
	"rollcall.io/infrastructure/auth"
	middlewares "rollcall.io/infrastructure/middleware"
)

func AuthRouter(router *gin.RouterGroup, c *controller.Controller, tokens *auth.TokenIssuer) {
	authRouter := router.Group("/auth")
	{
		authRouter.POST("/register", middlewares.OptionalOperatorMiddleware(tokens), func(ctx *gin.Context) {
			var body dto.RegisterOperatorDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.RegisterOperator(requestContext(ctx, &body))
		})

		authRouter.POST("/login", func(ctx *gin.Context) {
			var body dto.LoginDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.Login(requestContext(ctx, &body))
		})
	}
}
