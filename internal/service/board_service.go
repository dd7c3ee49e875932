package service

import (
	"context"
	"fmt"
	"sync"

	"noticeboard/internal/metrics"
	"noticeboard/internal/model"
	"noticeboard/internal/render"
	"noticeboard/pkg/logger"
)

// BoardResult 一次公告板请求的结果
type BoardResult struct {
	Source   model.Source
	Items    []model.Announcement
	Failures map[model.SourceKind]error
}

// SourceError 本地来源失败，仅在只请求本地公告时返回给调用方
type SourceError struct {
	Kind model.SourceKind
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s announcements: %v", e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// BoardService 公告板服务
type BoardService struct {
	providers    []Provider
	renderer     *render.Renderer
	defaultLimit int
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// NewBoardService 创建公告板服务，providers 的顺序决定发布时间相同时的先后
func NewBoardService(providers []Provider, renderer *render.Renderer, defaultLimit int, m *metrics.Metrics, log *logger.Logger) *BoardService {
	if renderer == nil {
		renderer = render.NewRenderer(nil)
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BoardService{
		providers:    providers,
		renderer:     renderer,
		defaultLimit: defaultLimit,
		metrics:      m,
		logger:       log,
	}
}

// DefaultLimit 未指定数量时的默认值
func (s *BoardService) DefaultLimit() int {
	return s.defaultLimit
}

// Announcements 并发获取所选来源的公告并合并。
// 一个来源失败不影响其它来源；只请求本地公告且本地失败时返回 *SourceError。
func (s *BoardService) Announcements(ctx context.Context, limit int, source model.Source) (*BoardResult, error) {
	var selected []Provider
	for _, p := range s.providers {
		if source.Includes(p.Kind()) {
			selected = append(selected, p)
		}
	}

	results := make([][]model.Announcement, len(selected))
	errs := make([]error, len(selected))

	var wg sync.WaitGroup
	wg.Add(len(selected))
	for i, p := range selected {
		go func(i int, p Provider) {
			defer wg.Done()
			results[i], errs[i] = p.Fetch(ctx, limit)
		}(i, p)
	}
	wg.Wait()

	result := &BoardResult{Source: source, Failures: map[model.SourceKind]error{}}
	for i, p := range selected {
		if errs[i] == nil {
			continue
		}
		kind := p.Kind()
		result.Failures[kind] = errs[i]
		s.metrics.ProviderFailures.WithLabelValues(kind.String()).Inc()
		if kind == model.SourceLocal {
			s.logger.Error("获取本地公告失败", "error", errs[i])
			if source == model.SelectLocal {
				return nil, &SourceError{Kind: kind, Err: errs[i]}
			}
		} else {
			s.logger.Warn("获取远程公告失败", "error", errs[i])
		}
	}

	result.Items = Merge(results, limit)
	return result, nil
}

// RenderHTML 获取并渲染公告列表
func (s *BoardService) RenderHTML(ctx context.Context, limit int, source model.Source) (string, error) {
	result, err := s.Announcements(ctx, limit, source)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(result.Items, result.Failures), nil
}
