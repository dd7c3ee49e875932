package model

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SourceKind 公告来源
type SourceKind int

const (
	// SourceLocal 本地撰写的公告，正文为 HTML
	SourceLocal SourceKind = iota
	// SourceRemote 来自 Nextcloud 公告中心，正文为 Markdown
	SourceRemote
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// MarshalText 以字符串形式序列化来源
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 解析 local/remote
func (k *SourceKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "local":
		*k = SourceLocal
	case "remote":
		*k = SourceRemote
	default:
		return fmt.Errorf("unknown source kind %q", text)
	}
	return nil
}

// Announcement 归一化后的公告
type Announcement struct {
	ID          string     `json:"id"`
	Source      SourceKind `json:"source"`
	AuthorID    string     `json:"author_id"`
	PublishedAt time.Time  `json:"published_at"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Link        string     `json:"link,omitempty"`
	LinkText    string     `json:"link_text,omitempty"`
	Groups      []string   `json:"groups,omitempty"`
}

// LocalAnnouncement 本地公告表记录
type LocalAnnouncement struct {
	ID          int64          `db:"id"`
	Author      string         `db:"author"`
	Title       string         `db:"title"`
	Content     string         `db:"content"`
	Summary     sql.NullString `db:"summary"`
	Link        sql.NullString `db:"link"`
	LinkText    sql.NullString `db:"link_text"`
	IsVisible   bool           `db:"is_visible"`
	PublishDate time.Time      `db:"publish_date"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Source 请求的公告来源选择
type Source int

const (
	SelectBoth Source = iota
	SelectLocal
	SelectRemote
)

func (s Source) String() string {
	switch s {
	case SelectLocal:
		return "local"
	case SelectRemote:
		return "remote"
	default:
		return "both"
	}
}

// ParseSource 解析来源参数，兼容短代码历史写法 wp/web 与 nextcloud/extranet
func ParseSource(raw string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "both", "all":
		return SelectBoth, true
	case "local", "wp", "web":
		return SelectLocal, true
	case "remote", "nextcloud", "extranet":
		return SelectRemote, true
	default:
		return SelectBoth, false
	}
}

// Includes 判断选择是否包含指定来源
func (s Source) Includes(kind SourceKind) bool {
	switch s {
	case SelectLocal:
		return kind == SourceLocal
	case SelectRemote:
		return kind == SourceRemote
	default:
		return true
	}
}

// NormalizeTime 统一为 UTC 秒级精度
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
