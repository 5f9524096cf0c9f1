package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/controller/dto"
	"rollcall.io/infrastructure/auth"
	middlewares "rollcall.io/infrastructure/middleware"
)

func IdentityRouter(router *gin.RouterGroup, c *controller.Controller, tokens *auth.TokenIssuer) {
	identityRouter := router.Group("/identities")
	{
		identityRouter.POST("", middlewares.OperatorAuthenticationMiddleware(tokens), func(ctx *gin.Context) {
			var body dto.EnrollIdentityDTO
			if err := ctx.ShouldBind(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			if !bindImage(ctx, &body.Image) {
				return
			}
			c.EnrollIdentity(requestContext(ctx, &body))
		})

		identityRouter.POST("/verify", func(ctx *gin.Context) {
			var body dto.VerifyIdentityDTO
			if !bindImage(ctx, &body.Image) {
				return
			}
			c.VerifyIdentity(requestContext(ctx, &body))
		})

		identityRouter.GET("/count", middlewares.OperatorAuthenticationMiddleware(tokens), func(ctx *gin.Context) {
			c.CountIdentities(requestContext[any](ctx, nil))
		})

		identityRouter.GET("/:id", middlewares.OperatorAuthenticationMiddleware(tokens), func(ctx *gin.Context) {
			var body dto.IdentityIDDTO
			if err := ctx.ShouldBindUri(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.IdentityProfile(requestContext(ctx, &body))
		})

		identityRouter.DELETE("/:id", middlewares.OperatorAuthenticationMiddleware(tokens, "admin"), func(ctx *gin.Context) {
			var body dto.IdentityIDDTO
			if err := ctx.ShouldBindUri(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.DeleteIdentity(requestContext(ctx, &body))
		})
	}
}

// bindImage reads the "image" multipart file. A missing file is left for the
// validator to report.
func bindImage(ctx *gin.Context, target *[]byte) bool {
	image, err := controller.ReadImage(ctx, "image")
	if err != nil && !controller.IsImageMissing(err) {
		apperrors.ClientError(ctx, err.Error(), nil, nil)
		return false
	}
	*target = image
	return true
}
