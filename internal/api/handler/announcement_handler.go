package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/render"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"
)

// Board 公告板服务
type Board interface {
	DefaultLimit() int
	Announcements(ctx context.Context, limit int, source model.Source) (*service.BoardResult, error)
	RenderHTML(ctx context.Context, limit int, source model.Source) (string, error)
}

// AnnouncementHandler 公告处理器
type AnnouncementHandler struct {
	board  Board
	logger *logger.Logger
}

// NewAnnouncementHandler 创建公告处理器实例
func NewAnnouncementHandler(board Board, logger *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		board:  board,
		logger: logger,
	}
}

// AnnouncementList json 格式的返回数据
type AnnouncementList struct {
	Source   string               `json:"source"`
	Items    []model.Announcement `json:"items"`
	Failures map[string]string    `json:"failures,omitempty"`
}

// GetAnnouncements 获取合并后的公告列表
// @Summary 获取公告列表
// @Description 合并本地与 Nextcloud 公告，按发布时间倒序返回
// @Tags 公告
// @Produce html,json
// @Param limit query int false "数量，默认4，小于等于0表示不限"
// @Param source query string false "来源：both/local/remote"
// @Param format query string false "返回格式：html/json，默认html"
// @Success 200 {string} string "公告 HTML 片段"
// @Router /api/v1/announcements [get]
func (h *AnnouncementHandler) GetAnnouncements(c *gin.Context) {
	limit := h.board.DefaultLimit()
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{
				"code": 400,
				"msg":  constants.ErrInvalidParams + "：limit",
			})
			return
		}
		limit = n
	}

	source, ok := model.ParseSource(c.Query("source"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"code": 400,
			"msg":  constants.ErrInvalidSource,
		})
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "html"))) {
	case "html":
		h.renderHTML(c, limit, source)
	case "json":
		h.renderJSON(c, limit, source)
	default:
		c.JSON(http.StatusOK, gin.H{
			"code": 400,
			"msg":  constants.ErrInvalidParams + "：format",
		})
	}
}

func (h *AnnouncementHandler) renderHTML(c *gin.Context, limit int, source model.Source) {
	html, err := h.board.RenderHTML(c.Request.Context(), limit, source)
	if err != nil {
		h.logResultError(err, limit, source)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
			[]byte(`<p class="text-danger">`+template.HTMLEscapeString(constants.MsgLocalUnavailable)+`</p>`))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *AnnouncementHandler) renderJSON(c *gin.Context, limit int, source model.Source) {
	result, err := h.board.Announcements(c.Request.Context(), limit, source)
	if err != nil {
		h.logResultError(err, limit, source)
		c.JSON(http.StatusOK, gin.H{
			"code": 500,
			"msg":  constants.MsgLocalUnavailable,
		})
		return
	}

	data := AnnouncementList{Source: result.Source.String(), Items: result.Items}
	if data.Items == nil {
		data.Items = []model.Announcement{}
	}
	if len(result.Failures) > 0 {
		data.Failures = make(map[string]string, len(result.Failures))
		for kind, ferr := range result.Failures {
			data.Failures[kind.String()] = render.Explain(ferr)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessGet,
		"data": data,
	})
}

func (h *AnnouncementHandler) logResultError(err error, limit int, source model.Source) {
	var srcErr *service.SourceError
	if errors.As(err, &srcErr) {
		h.logger.Error("获取公告失败", "source", source.String(), "limit", limit, "error", err)
		return
	}
	h.logger.Error("获取公告时发生未知错误", "source", source.String(), "limit", limit, "error", err)
}
