package admin

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员API路由，认证中间件由调用方挂在 router 上
func RegisterAdminRoutes(router *gin.RouterGroup, announcementAdminHandler *AnnouncementAdminHandler) {
	announcements := router.Group("/announcements")
	{
		announcements.POST("/create", announcementAdminHandler.CreateAnnouncement)
		announcements.POST("/cache/purge", announcementAdminHandler.PurgeCache)
		announcements.POST("/cache/refresh", announcementAdminHandler.RefreshCache)
	}
}
