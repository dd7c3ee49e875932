package apis

import (
	"noticeboard/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册不需要认证的路由
func RegisterPublicRoutes(v1 *gin.RouterGroup, announcementHandler *handler.AnnouncementHandler) {
	announcements := v1.Group("/announcements")
	{
		announcements.GET("", announcementHandler.GetAnnouncements)
	}
}
