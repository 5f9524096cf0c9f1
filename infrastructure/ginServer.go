package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/interfaces"
	"rollcall.io/infrastructure/auth"
	"rollcall.io/infrastructure/env"
	middlewares "rollcall.io/infrastructure/middleware"
	ratelimit "rollcall.io/infrastructure/ratelimit"
	webRoutev1 "rollcall.io/infrastructure/routes/ginRouter/web/v1"
)

func appContext(ctx *gin.Context) *interfaces.ApplicationContext[any] {
	existing, _ := ctx.Get("AppContext")
	appCtx, ok := existing.(*interfaces.ApplicationContext[any])
	if !ok {
		appCtx = &interfaces.ApplicationContext[any]{Ctx: ctx, Header: ctx.Request.Header}
	}
	return appCtx
}

// NewRouter builds the gin engine. Tests drive it through httptest.
func NewRouter(cfg env.Config, c *controller.Controller, tokens *auth.TokenIssuer) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestContextMiddleware())

	origins := cfg.AllowedOrigins
	if len(origins) == 0 && !cfg.IsProd() {
		origins = []string{"http://localhost:5173"}
	}
	if len(origins) > 0 {
		server.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	server.Use(ratelimit.TokenBucketPerIP(cfg.RateLimit))
	server.MaxMultipartMemory = 15 << 20 // 15 MiB

	routerV1 := server.Group("/api/v1")
	{
		webRoutev1.AuthRouter(routerV1, c, tokens)
		faceRoutes := routerV1.Group("")
		faceRoutes.Use(ratelimit.FaceBucketPerIP(cfg.FaceRateLimit))
		webRoutev1.IdentityRouter(faceRoutes, c, tokens)
		webRoutev1.AttendanceRouter(faceRoutes, c, tokens)
		webRoutev1.LivenessRouter(faceRoutes, c)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		c.Ping(appContext(ctx))
	})
	server.GET("/healthz", func(ctx *gin.Context) {
		c.Healthz(appContext(ctx))
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL))
	})
	return server
}

type ginServer struct {
	http *http.Server
}

func (s *ginServer) Start(cfg env.Config, handler http.Handler) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ginServer) Shutdown(timeout time.Duration) error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
