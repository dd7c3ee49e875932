package repository

import (
	"context"
	"fmt"
	"time"

	"noticeboard/internal/model"

	"github.com/jmoiron/sqlx"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS nb_announcements (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	author VARCHAR(191) NOT NULL DEFAULT '',
	title VARCHAR(255) NOT NULL,
	content MEDIUMTEXT NOT NULL,
	summary TEXT NULL,
	link VARCHAR(2048) NULL,
	link_text VARCHAR(255) NULL,
	is_visible BOOLEAN NOT NULL DEFAULT TRUE,
	publish_date DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	KEY idx_nb_announcements_publish (is_visible, publish_date)
) DEFAULT CHARSET=utf8mb4`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nb_announcements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	summary TEXT NULL,
	link TEXT NULL,
	link_text TEXT NULL,
	is_visible BOOLEAN NOT NULL DEFAULT 1,
	publish_date DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

// AnnouncementRepository 本地公告存储库
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository 创建公告存储库实例
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// EnsureSchema 创建公告表（已存在时不做任何修改）
func (r *AnnouncementRepository) EnsureSchema(ctx context.Context) error {
	schema := mysqlSchema
	if r.db.DriverName() == "sqlite" {
		schema = sqliteSchema
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("创建公告表失败: %w", err)
	}
	return nil
}

// QueryRecent 按发布时间倒序获取可见公告，limit <= 0 时不限制数量
func (r *AnnouncementRepository) QueryRecent(ctx context.Context, limit int) ([]model.LocalAnnouncement, error) {
	var announcements []model.LocalAnnouncement
	query := `
		SELECT id, author, title, content, summary, link, link_text, is_visible, publish_date, created_at, updated_at
		FROM nb_announcements
		WHERE is_visible = ?
		ORDER BY publish_date DESC, id DESC`
	args := []interface{}{true}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, err
	}
	return announcements, nil
}

// CreateAnnouncement 写入一条本地公告
func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, a *model.LocalAnnouncement) error {
	now := model.NormalizeTime(time.Now())
	if a.PublishDate.IsZero() {
		a.PublishDate = now
	}
	a.PublishDate = model.NormalizeTime(a.PublishDate)
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO nb_announcements (author, title, content, summary, link, link_text, is_visible, publish_date, created_at, updated_at)
		VALUES (:author, :title, :content, :summary, :link, :link_text, :is_visible, :publish_date, :created_at, :updated_at)`
	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}
