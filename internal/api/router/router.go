package router

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/api/handler"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/api/middleware"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/jwt"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/redis"
)

const (
	maxBodyBytes = 1 << 20

	// 公开接口按 IP 限流；揭示配额由数据库函数单独控制
	publicRateLimit = 60
	authRateLimit   = 10
	rateLimitWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流与 Token 黑名单降级关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		limiter   middleware.RateLimiter
		blacklist middleware.TokenChecker
	)
	if rdb != nil {
		limiter = rdb
		blacklist = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(corsByPrefix(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 边缘函数 ──
	functions := r.Group("/functions/v1")
	{
		functions.POST("/reveal-contact", h.Reveal.RevealContact)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, authRateLimit, rateLimitWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 拾获者公开接口
		public := v1.Group("/public")
		public.Use(middleware.RateLimit(limiter, publicRateLimit, rateLimitWindow))
		{
			public.GET("/tags/:identifier", middleware.OptionalJWTAuth(jwtMgr, blacklist), h.Public.ViewTag)
			public.POST("/tags/:identifier/messages", h.Public.SendMessage)
			public.PATCH("/scans/:id/location", h.Public.UpdateScanLocation)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/me", h.Auth.UpdateProfile)

			// 标签模块
			tags := authorized.Group("/tags")
			{
				tags.POST("/claim", h.Tag.Claim)
				tags.GET("", h.Tag.ListMine)
				tags.GET("/:id", h.Tag.GetTag)
				tags.PUT("/:id", h.Tag.UpdateTag)
				tags.DELETE("/:id", h.Tag.ReleaseTag)
				tags.GET("/:id/scans", h.Tag.ListScans)
			}

			// 收件箱
			messages := authorized.Group("/messages")
			{
				messages.GET("", h.Message.ListMessages)
				messages.GET("/unread-count", h.Message.UnreadCount)
				messages.PUT("/:id/read", h.Message.MarkAsRead)
			}

			// 通知
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
				notifications.PUT("/:id/read", h.Notification.MarkAsRead)
			}

			// 管理后台
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				admin.GET("/retailers", h.Admin.ListRetailers)
				admin.POST("/retailers", h.Admin.CreateRetailer)
				admin.GET("/retailers/:id", h.Admin.GetRetailer)
				admin.PUT("/retailers/:id", h.Admin.UpdateRetailer)
				admin.DELETE("/retailers/:id", h.Admin.DeleteRetailer)

				admin.GET("/qr-batches", h.Admin.ListBatches)
				admin.POST("/qr-batches", h.Admin.CreateBatch)
				admin.GET("/qr-batches/:id", h.Admin.GetBatch)
				admin.GET("/qr-batches/:id/export", h.Admin.ExportBatch)
				admin.GET("/qr-codes/:identifier/png", h.Admin.TagPNG)
			}
		}
	}

	return r
}

// corsByPrefix 边缘函数对任意来源开放，其余接口走白名单
// 预检请求没有匹配的路由，只能在全局中间件里分流
func corsByPrefix(allowOrigins []string) gin.HandlerFunc {
	apiCORS := middleware.CORS(allowOrigins)
	fnCORS := middleware.FunctionCORS()
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			fnCORS(c)
			return
		}
		apiCORS(c)
	}
}
