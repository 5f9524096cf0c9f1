package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/controller/dto"
)

func LivenessRouter(router *gin.RouterGroup, c *controller.Controller) {
	livenessRouter := router.Group("/liveness")
	{
		livenessRouter.POST("/check", func(ctx *gin.Context) {
			var body dto.LivenessImageDTO
			if !bindImage(ctx, &body.Image) {
				return
			}
			c.CheckLiveness(requestContext(ctx, &body))
		})

		livenessRouter.POST("/challenge", func(ctx *gin.Context) {
			c.IssueChallenge(requestContext[any](ctx, nil))
		})

		livenessRouter.POST("/challenge/:id/verify", func(ctx *gin.Context) {
			var body dto.VerifyChallengeDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			body.ID = ctx.Param("id")
			c.VerifyChallenge(requestContext(ctx, &body))
		})
	}
}
