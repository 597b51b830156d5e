package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bids-api/internal/core/auth"
	"bids-api/internal/transport/http/handler"
	"bids-api/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Bid     *handler.BidHandler
	Comment *handler.CommentHandler
}

type Options struct {
	Env          string
	MaxBodyBytes int64
}

// New 组装 gin 引擎：通用中间件 + 业务路由
func New(l *zap.Logger, j *auth.JWTer, h Handlers, opt Options) *gin.Engine {
	if opt.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if opt.MaxBodyBytes <= 0 {
		opt.MaxBodyBytes = 8 << 20
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RateLimit(rate.Limit(200), 400),
		middleware.ConcurrencyLimit(256),
		middleware.MaxBodyBytes(opt.MaxBodyBytes),
		middleware.Timeout(15*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		middleware.Metrics(),
		middleware.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := middleware.Identity(j)
	api := r.Group("/api/v1")
	{
		ag := api.Group("/auth")
		{
			ag.POST("/signup", h.Auth.Signup)
			ag.POST("/signin", h.Auth.Signin)
			ag.POST("/signout", authed, h.Auth.Signout)
			ag.POST("/refresh", authed, h.Auth.Refresh)
		}

		ug := api.Group("/user")
		{
			ug.GET("/profile", authed, h.User.Profile)
			ug.PUT("/profile", authed, h.User.Update)
			ug.DELETE("/profile", authed, h.User.Delete)
			// 恢复账号不走 Identity：软删用户手里没有可用的 access token
			ug.PATCH("/profile/restore", h.User.Restore)
		}

		bg := api.Group("/bids")
		{
			bg.GET("", h.Bid.List)
			bg.GET("/:id", h.Bid.Get)
			bg.POST("", authed, h.Bid.Create)
			bg.PATCH("/:id", authed, h.Bid.Resolve)
			bg.DELETE("/:id", authed, h.Bid.Delete)

			bg.GET("/:id/comments", h.Comment.List)
			bg.POST("/:id/comments", authed, h.Comment.Create)
			bg.PATCH("/:id/comments/:commentId", authed, h.Comment.Edit)
			bg.DELETE("/:id/comments/:commentId", authed, h.Comment.Delete)
		}
	}

	return r
}
