package service

import (
	"context"
	"strconv"
	"strings"

	"noticeboard/internal/model"
	"noticeboard/pkg/excerpt"
)

// defaultPermalinkBase 未配置站点地址时的公告链接前缀
const defaultPermalinkBase = "/announcements"

// LocalStore 本地公告存储
type LocalStore interface {
	QueryRecent(ctx context.Context, limit int) ([]model.LocalAnnouncement, error)
}

// LocalProvider 本地公告来源
type LocalProvider struct {
	store         LocalStore
	permalinkBase string
	excerptLen    int
}

// NewLocalProvider 创建本地公告来源
func NewLocalProvider(store LocalStore, permalinkBase string, excerptLen int) *LocalProvider {
	base := strings.TrimRight(strings.TrimSpace(permalinkBase), "/")
	if base == "" {
		base = defaultPermalinkBase
	}
	return &LocalProvider{
		store:         store,
		permalinkBase: base,
		excerptLen:    excerptLen,
	}
}

// Kind 来源类型
func (p *LocalProvider) Kind() model.SourceKind {
	return model.SourceLocal
}

// Fetch 获取最近的本地公告
func (p *LocalProvider) Fetch(ctx context.Context, limit int) ([]model.Announcement, error) {
	rows, err := p.store.QueryRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Announcement, 0, len(rows))
	for _, row := range rows {
		out = append(out, p.toAnnouncement(row))
	}
	// 存储层已排序，这里再保证一次跨驱动的一致性
	sortByRecency(out)
	return out, nil
}

func (p *LocalProvider) toAnnouncement(row model.LocalAnnouncement) model.Announcement {
	id := strconv.FormatInt(row.ID, 10)

	link := strings.TrimSpace(row.Link.String)
	if link == "" {
		link = p.permalinkBase + "/" + id
	}

	summary := strings.TrimSpace(row.Summary.String)
	if summary == "" {
		summary = excerpt.Derive(excerpt.PlainText(row.Content), p.excerptLen)
	}

	return model.Announcement{
		ID:          id,
		Source:      model.SourceLocal,
		AuthorID:    row.Author,
		PublishedAt: model.NormalizeTime(row.PublishDate),
		Title:       row.Title,
		Body:        row.Content,
		Excerpt:     summary,
		Link:        link,
		LinkText:    strings.TrimSpace(row.LinkText.String),
	}
}
