package admin

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/render"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"
)

// AnnouncementWriter 本地公告写入
type AnnouncementWriter interface {
	CreateAnnouncement(ctx context.Context, a *model.LocalAnnouncement) error
}

// RemoteCache 远程公告缓存操作
type RemoteCache interface {
	Purge(ctx context.Context) error
	Revalidate(ctx context.Context) (service.RevalidateOutcome, error)
}

// AnnouncementAdminHandler 公告管理处理器
type AnnouncementAdminHandler struct {
	writer AnnouncementWriter
	remote RemoteCache
	logger *logger.Logger
}

// NewAnnouncementAdminHandler 创建公告管理处理器实例
func NewAnnouncementAdminHandler(writer AnnouncementWriter, remote RemoteCache, logger *logger.Logger) *AnnouncementAdminHandler {
	return &AnnouncementAdminHandler{
		writer: writer,
		remote: remote,
		logger: logger,
	}
}

// CreateAnnouncementRequest 创建公告请求结构体
type CreateAnnouncementRequest struct {
	Title       string     `json:"title" binding:"required"`
	Content     string     `json:"content" binding:"required"`
	Summary     string     `json:"summary"`
	Link        string     `json:"link"`
	LinkText    string     `json:"link_text"`
	IsVisible   *bool      `json:"is_visible"`
	Author      string     `json:"author"`
	PublishDate *time.Time `json:"publish_date"`
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateAnnouncement 创建本地公告
// @Summary 创建公告
// @Description 管理员创建本地公告，content 为 HTML
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param announcement body CreateAnnouncementRequest true "公告信息"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/announcements/create [post]
func (h *AnnouncementAdminHandler) CreateAnnouncement(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("创建公告参数绑定失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 400,
			"msg":  constants.ErrInvalidParams + "：" + err.Error(),
		})
		return
	}

	author := req.Author
	if author == "" {
		author = "系统管理员"
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	announcement := &model.LocalAnnouncement{
		Author:    author,
		Title:     req.Title,
		Content:   req.Content,
		Summary:   nullString(req.Summary),
		Link:      nullString(req.Link),
		LinkText:  nullString(req.LinkText),
		IsVisible: visible,
	}
	if req.PublishDate != nil {
		announcement.PublishDate = *req.PublishDate
	}

	if err := h.writer.CreateAnnouncement(c.Request.Context(), announcement); err != nil {
		h.logger.Error("创建公告失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 500,
			"msg":  "创建公告失败",
		})
		return
	}

	h.logger.Info("创建公告成功", "id", announcement.ID, "author", author)
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "success",
		"data": gin.H{"id": announcement.ID, "publish_date": announcement.PublishDate},
	})
}

// PurgeCache 清除远程公告缓存
// @Summary 清除缓存
// @Tags 公告管理
// @Produce json
// @Router /api/v1/admin/announcements/cache/purge [post]
func (h *AnnouncementAdminHandler) PurgeCache(c *gin.Context) {
	if err := h.remote.Purge(c.Request.Context()); err != nil {
		h.logger.Error("清除公告缓存失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 500,
			"msg":  constants.ErrInternalServer,
		})
		return
	}

	h.logger.Info("公告缓存已清除")
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessCachePurged,
	})
}

// RefreshCache 带 If-Modified-Since 重新校验远程公告缓存
// @Summary 刷新缓存
// @Tags 公告管理
// @Produce json
// @Router /api/v1/admin/announcements/cache/refresh [post]
func (h *AnnouncementAdminHandler) RefreshCache(c *gin.Context) {
	outcome, err := h.remote.Revalidate(c.Request.Context())
	if err != nil {
		h.logger.Warn("刷新公告缓存失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 502,
			"msg":  render.Explain(err),
		})
		return
	}

	h.logger.Info("公告缓存已刷新", "outcome", string(outcome))
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessCacheRefresh,
		"data": gin.H{"outcome": outcome},
	})
}
