package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"noticeboard/config"
	"noticeboard/internal/api"
	"noticeboard/internal/repository"
	"noticeboard/pkg/database"
	"noticeboard/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrEnvFileMissing) {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 初始化日志
	logger := logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()
	if err != nil {
		logger.Warn("未找到 .env 文件，使用进程环境变量")
	}

	// 初始化数据库连接
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("无法链接到数据库", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = repository.NewAnnouncementRepository(db).EnsureSchema(ctx)
	cancel()
	if err != nil {
		logger.Fatal("初始化公告表失败", "error", err)
	}

	// 初始化Redis连接
	var redisClient *redis.Client
	if cfg.Cache.Driver == "redis" {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("无法链接到Redis", "error", err)
		}
		defer redisClient.Close()
	} else {
		logger.Info("使用进程内缓存", "driver", cfg.Cache.Driver)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 初始化API路由
	router := api.SetupRouter(cfg, logger, db, redisClient, registry)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info(fmt.Sprintf("服务器启动于端口: %d", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("启动服务器失败", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("服务器被强制关闭", "error", err)
	}

	logger.Info("服务器已正常退出")
}
