package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"noticeboard/internal/cache"
	"noticeboard/internal/metrics"
	"noticeboard/internal/model"
	"noticeboard/internal/nextcloud"
	"noticeboard/pkg/logger"
)

const (
	defaultRemoteTTL      = 24 * time.Hour
	defaultRemoteTimeout  = 10 * time.Second
	defaultRemoteCacheKey = "noticeboard:nextcloud:announcements"
)

// RemoteConfig 远程来源配置，在构造时显式传入
type RemoteConfig struct {
	BaseURL       string
	Username      string
	Password      string
	Format        nextcloud.Format
	TTL           time.Duration // 即同步频率
	Timeout       time.Duration
	// Groups 允许展示的群组 ID；为空时关闭群组过滤，groups 为空的公告也会展示
	Groups        []string
	CacheKey      string
	ExcerptLength int
}

// RawFetcher 获取原始响应
type RawFetcher interface {
	FetchRaw(ctx context.Context, format nextcloud.Format, lastModified string) (*nextcloud.RawResponse, error)
}

// RevalidateOutcome 重新校验的结果
type RevalidateOutcome string

const (
	RevalidateNotModified RevalidateOutcome = "not_modified"
	RevalidateUpdated     RevalidateOutcome = "updated"
	RevalidateFetched     RevalidateOutcome = "fetched"
)

// RemoteProvider Nextcloud 公告来源
type RemoteProvider struct {
	cfg     RemoteConfig
	targets sets.Set[string]
	fetcher RawFetcher
	cache   cache.ResponseCache
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewRemoteProvider 创建远程公告来源，fetcher 为 nil 时按配置创建 Nextcloud 客户端
func NewRemoteProvider(cfg RemoteConfig, fetcher RawFetcher, responseCache cache.ResponseCache, m *metrics.Metrics, log *logger.Logger) *RemoteProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultRemoteTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRemoteTimeout
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = defaultRemoteCacheKey
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = nextcloud.DefaultExcerptLength
	}
	if cfg.Format == "" {
		cfg.Format = nextcloud.FormatJSON
	}
	if fetcher == nil {
		fetcher = nextcloud.NewClient(cfg.BaseURL, nextcloud.Credentials{Username: cfg.Username, Password: cfg.Password}, cfg.TTL)
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if log == nil {
		log = logger.NewNop()
	}

	var targets sets.Set[string]
	if len(cfg.Groups) > 0 {
		targets = sets.New[string](cfg.Groups...)
	}

	return &RemoteProvider{
		cfg:     cfg,
		targets: targets,
		fetcher: fetcher,
		cache:   responseCache,
		metrics: m,
		logger:  log,
	}
}

// Kind 来源类型
func (p *RemoteProvider) Kind() model.SourceKind {
	return model.SourceRemote
}

// Fetch 从缓存或 Nextcloud 获取公告，过滤群组后按时间倒序截断
func (p *RemoteProvider) Fetch(ctx context.Context, limit int) ([]model.Announcement, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	items, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	items = FilterByGroups(items, p.targets)
	// 接口返回顺序不保证
	sortByRecency(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Revalidate 带 If-Modified-Since 重新校验缓存。304 时仅刷新过期时间，
// 200 时覆盖缓存，失败时保留原缓存。
func (p *RemoteProvider) Revalidate(ctx context.Context) (RevalidateOutcome, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	if _, err := p.cache.Get(ctx, p.cfg.CacheKey); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			p.logger.Warn("读取公告缓存失败", "key", p.cfg.CacheKey, "error", err)
		}
		if _, err := p.refresh(ctx); err != nil {
			return "", err
		}
		return RevalidateFetched, nil
	}

	lastModified := p.lastModified(ctx)
	resp, err := p.fetch(ctx, lastModified)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusNotModified {
		ok, err := p.cache.Touch(ctx, p.cfg.CacheKey, p.cfg.TTL)
		if err != nil {
			p.logger.Warn("刷新公告缓存过期时间失败", "key", p.cfg.CacheKey, "error", err)
		}
		if ok {
			return RevalidateNotModified, nil
		}
		// 缓存在请求期间过期，重新完整获取
		if _, err := p.refresh(ctx); err != nil {
			return "", err
		}
		return RevalidateFetched, nil
	}

	if _, err := p.store(ctx, resp); err != nil {
		return "", err
	}
	return RevalidateUpdated, nil
}

// Purge 清除缓存
func (p *RemoteProvider) Purge(ctx context.Context) error {
	return p.cache.Delete(ctx, p.cfg.CacheKey)
}

func (p *RemoteProvider) validate() error {
	var missing []string
	if strings.TrimSpace(p.cfg.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if p.cfg.Username == "" {
		missing = append(missing, "username")
	}
	if p.cfg.Password == "" {
		missing = append(missing, "password")
	}
	if p.cfg.Format != nextcloud.FormatJSON && p.cfg.Format != nextcloud.FormatXML {
		missing = append(missing, "format")
	}
	if len(missing) > 0 {
		return &nextcloud.ConfigurationError{Missing: missing}
	}
	return nil
}

// load 命中缓存时不发起任何网络请求
func (p *RemoteProvider) load(ctx context.Context) ([]model.Announcement, error) {
	body, err := p.cache.Get(ctx, p.cfg.CacheKey)
	if err == nil {
		p.metrics.CacheLookups.WithLabelValues("hit").Inc()
		items, perr := p.normalize(body)
		if perr == nil {
			return items, nil
		}
		// 只会写入解析成功的响应，读到无法解析的内容说明缓存被外部改写
		p.logger.Warn("缓存的公告数据无法解析，已丢弃", "key", p.cfg.CacheKey, "error", perr)
		if derr := p.cache.Delete(ctx, p.cfg.CacheKey); derr != nil {
			p.logger.Warn("删除公告缓存失败", "key", p.cfg.CacheKey, "error", derr)
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		p.logger.Warn("读取公告缓存失败", "key", p.cfg.CacheKey, "error", err)
	}

	p.metrics.CacheLookups.WithLabelValues("miss").Inc()
	return p.refresh(ctx)
}

// refresh 缓存缺失时获取并写入缓存
func (p *RemoteProvider) refresh(ctx context.Context) ([]model.Announcement, error) {
	resp, err := p.fetch(ctx, p.lastModified(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotModified {
		// 没有可复用的正文，去掉条件头再请求一次
		if derr := p.cache.Delete(ctx, p.cfg.CacheKey); derr != nil {
			p.logger.Warn("删除公告缓存失败", "key", p.cfg.CacheKey, "error", derr)
		}
		resp, err = p.fetch(ctx, "")
		if err != nil {
			return nil, err
		}
	}
	return p.store(ctx, resp)
}

// store 仅在 200 且解析成功时写入缓存
func (p *RemoteProvider) store(ctx context.Context, resp *nextcloud.RawResponse) ([]model.Announcement, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, &nextcloud.NetworkError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	items, err := p.normalize(resp.Body)
	if err != nil {
		p.metrics.RemoteFetches.WithLabelValues("parse_error").Inc()
		return nil, err
	}

	if err := p.cache.Put(ctx, p.cfg.CacheKey, resp.Body, p.cfg.TTL); err != nil {
		p.logger.Warn("写入公告缓存失败", "key", p.cfg.CacheKey, "error", err)
	}
	if lm := resp.LastModified(); lm != "" {
		if err := p.cache.PutLastModified(ctx, p.cfg.CacheKey, lm, p.cfg.TTL); err != nil {
			p.logger.Warn("写入 Last-Modified 失败", "key", p.cfg.CacheKey, "error", err)
		}
	}
	return items, nil
}

func (p *RemoteProvider) fetch(ctx context.Context, lastModified string) (*nextcloud.RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.fetcher.FetchRaw(ctx, p.cfg.Format, lastModified)
	p.metrics.RemoteFetchTime.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.RemoteFetches.WithLabelValues("error").Inc()
		p.logger.Warn("获取 Nextcloud 公告失败", "error", err)
		var netErr *nextcloud.NetworkError
		if !errors.As(err, &netErr) {
			err = &nextcloud.NetworkError{Err: err}
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified {
		p.metrics.RemoteFetches.WithLabelValues("not_modified").Inc()
	} else {
		p.metrics.RemoteFetches.WithLabelValues("ok").Inc()
	}
	p.logger.Debug("获取 Nextcloud 公告完成", "status", resp.StatusCode, "bytes", len(resp.Body), "conditional", lastModified != "")
	return resp, nil
}

func (p *RemoteProvider) lastModified(ctx context.Context) string {
	lm, err := p.cache.GetLastModified(ctx, p.cfg.CacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			p.logger.Warn("读取 Last-Modified 失败", "key", p.cfg.CacheKey, "error", err)
		}
		return ""
	}
	return lm
}

func (p *RemoteProvider) normalize(body []byte) ([]model.Announcement, error) {
	return nextcloud.NormalizePayload(body, p.cfg.Format, p.cfg.ExcerptLength)
}
