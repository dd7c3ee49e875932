package service

import (
	"context"

	"noticeboard/internal/model"
)

// Provider 公告来源
type Provider interface {
	Kind() model.SourceKind
	// Fetch 返回按发布时间倒序的公告，limit <= 0 表示不限制
	Fetch(ctx context.Context, limit int) ([]model.Announcement, error)
}
