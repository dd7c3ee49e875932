package api

import (
	"net/http"

	"noticeboard/config"
	"noticeboard/internal/api/admin"
	"noticeboard/internal/api/apis"
	"noticeboard/internal/api/handler"
	"noticeboard/internal/cache"
	"noticeboard/internal/metrics"
	"noticeboard/internal/middleware"
	"noticeboard/internal/nextcloud"
	"noticeboard/internal/render"
	"noticeboard/internal/repository"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 设置API路由。redisClient 为 nil 时使用进程内缓存。
func SetupRouter(cfg *config.Config, logger *logger.Logger, db *sqlx.DB, redisClient *redis.Client, registry *prometheus.Registry) *gin.Engine {
	// 创建Gin引擎
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	m := metrics.New(registry)

	// 初始化存储库
	announcementRepo := repository.NewAnnouncementRepository(db)

	// 初始化缓存
	var responseCache cache.ResponseCache
	if redisClient != nil {
		responseCache = cache.NewRedisCache(redisClient)
	} else {
		responseCache = cache.NewMemoryCache(nil)
	}

	// 初始化服务
	format, ok := nextcloud.ParseFormat(cfg.Remote.Format)
	if !ok {
		// 保留原值，由远程来源报告配置错误
		logger.Warn("未知的 Nextcloud 返回格式，远程公告将不可用", "format", cfg.Remote.Format)
		format = nextcloud.Format(cfg.Remote.Format)
	}
	remoteProvider := service.NewRemoteProvider(service.RemoteConfig{
		BaseURL:       cfg.Remote.BaseURL,
		Username:      cfg.Remote.Username,
		Password:      cfg.Remote.Password,
		Format:        format,
		TTL:           cfg.Remote.SyncFrequency,
		Timeout:       cfg.Remote.Timeout,
		Groups:        cfg.Remote.Groups,
		CacheKey:      cfg.Cache.Key,
		ExcerptLength: cfg.Board.ExcerptLength,
	}, nil, responseCache, m, logger)
	localProvider := service.NewLocalProvider(announcementRepo, cfg.Board.PermalinkBase, cfg.Board.ExcerptLength)
	boardService := service.NewBoardService(
		[]service.Provider{localProvider, remoteProvider},
		render.NewRenderer(nil),
		cfg.Board.DefaultLimit,
		m,
		logger,
	)

	// 初始化处理器
	announcementHandler := handler.NewAnnouncementHandler(boardService, logger)
	announcementAdminHandler := admin.NewAnnouncementAdminHandler(announcementRepo, remoteProvider, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// API版本v1
	v1 := router.Group("/api/v1")
	apis.RegisterPublicRoutes(v1, announcementHandler)

	// 注册管理员API路由
	adminRouter := v1.Group("/admin")
	adminRouter.Use(middleware.AdminAuth(cfg.Admin.TokenHash))
	admin.RegisterAdminRoutes(adminRouter, announcementAdminHandler)

	return router
}
