// Package nextcloud 访问 Nextcloud 公告中心 OCS 接口并归一化其响应
package nextcloud

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIPath 公告中心接口路径
const APIPath = "ocs/v2.php/apps/announcementcenter/api/v1/announcements"

// maxBodySize 响应体上限
const maxBodySize = 8 << 20

// Format 响应格式
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat 解析格式配置，未知值返回 false
func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatXML:
		return FormatXML, true
	default:
		return "", false
	}
}

// Credentials Basic 认证凭据
type Credentials struct {
	Username string
	Password string
}

// RawResponse 原始 HTTP 响应
type RawResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
}

// LastModified 返回 Last-Modified 响应头
func (r *RawResponse) LastModified() string {
	return r.Header.Get("Last-Modified")
}

// Client 公告中心接口客户端
type Client struct {
	baseURL     string
	credentials Credentials
	maxAge      time.Duration
	httpClient  *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient 创建客户端，maxAge 写入 Cache-Control 请求头
func NewClient(baseURL string, credentials Credentials, maxAge time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		credentials: credentials,
		maxAge:      maxAge,
		httpClient:  NewHTTPClient(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient 创建带连接池参数的 HTTP 客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Endpoint 拼接接口地址
func Endpoint(baseURL string, format Format) (string, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return "", fmt.Errorf("empty base url")
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + APIPath)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("format", string(format))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchRaw 请求公告列表。lastModified 非空时发送 If-Modified-Since。
// 304 作为正常响应返回；传输失败与其它非 2xx 状态返回 *NetworkError。
func (c *Client) FetchRaw(ctx context.Context, format Format, lastModified string) (*RawResponse, error) {
	endpoint, err := Endpoint(c.baseURL, format)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.SetBasicAuth(c.credentials.Username, c.credentials.Password)
	// 没有该请求头时 Nextcloud 会返回登录页面
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("Cache-Control", "max-age="+strconv.Itoa(int(c.maxAge/time.Second)))
	if format == FormatXML {
		req.Header.Set("Accept", "application/xml")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: err}
	}
	if len(body) > maxBodySize {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response body exceeds %d bytes", maxBodySize)}
	}

	if resp.StatusCode != http.StatusNotModified && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	return &RawResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}
