package routev1

import (
	"github.com/gin-gonic/gin"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/controller/dto"
	"rollcall.io/infrastructure/auth"
	middlewares "rollcall.io/infrastructure/middleware"
)

func AttendanceRouter(router *gin.RouterGroup, c *controller.Controller, tokens *auth.TokenIssuer) {
	attendanceRouter := router.Group("/attendance")
	{
		attendanceRouter.POST("/mark", func(ctx *gin.Context) {
			var body dto.MarkAttendanceDTO
			if err := ctx.ShouldBind(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			if !bindImage(ctx, &body.Image) {
				return
			}
			c.MarkAttendance(requestContext(ctx, &body))
		})

		attendanceRouter.POST("/manual", middlewares.OperatorAuthenticationMiddleware(tokens, "admin"), func(ctx *gin.Context) {
			var body dto.ManualMarkDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.ManualMark(requestContext(ctx, &body))
		})

		attendanceRouter.GET("", middlewares.OperatorAuthenticationMiddleware(tokens), func(ctx *gin.Context) {
			var body dto.AttendanceQueryDTO
			if err := ctx.ShouldBindQuery(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.AttendanceReport(requestContext(ctx, &body))
		})

		attendanceRouter.GET("/stats", middlewares.OperatorAuthenticationMiddleware(tokens), func(ctx *gin.Context) {
			var body dto.AttendanceStatsDTO
			if err := ctx.ShouldBindQuery(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			c.AttendanceStats(requestContext(ctx, &body))
		})
	}
}
