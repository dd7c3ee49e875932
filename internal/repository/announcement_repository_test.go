package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/database"
)

func newRepo(t *testing.T) *repository.AnnouncementRepository {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewAnnouncementRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	// 重复执行不报错
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func seed(t *testing.T, repo *repository.AnnouncementRepository, title string, published time.Time, visible bool) *model.LocalAnnouncement {
	t.Helper()
	a := &model.LocalAnnouncement{
		Author:      "admin",
		Title:       title,
		Content:     "<p>" + title + "</p>",
		IsVisible:   visible,
		PublishDate: published,
	}
	require.NoError(t, repo.CreateAnnouncement(context.Background(), a))
	require.NotZero(t, a.ID)
	return a
}

func TestQueryRecentOrdersAndLimits(t *testing.T) {
	repo := newRepo(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	seed(t, repo, "oldest", base.Add(-48*time.Hour), true)
	seed(t, repo, "newest", base, true)
	seed(t, repo, "hidden", base.Add(time.Hour), false)
	seed(t, repo, "middle", base.Add(-24*time.Hour), true)

	all, err := repo.QueryRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "newest", all[0].Title)
	require.Equal(t, "middle", all[1].Title)
	require.Equal(t, "oldest", all[2].Title)
	require.True(t, all[0].PublishDate.Equal(base))

	unbounded, err := repo.QueryRecent(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, unbounded, 3)

	limited, err := repo.QueryRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "newest", limited[0].Title)
	require.Equal(t, "middle", limited[1].Title)
}

func TestQueryRecentOptionalColumns(t *testing.T) {
	repo := newRepo(t)
	a := &model.LocalAnnouncement{
		Author:      "admin",
		Title:       "With overrides",
		Content:     "<p>Body</p>",
		Summary:     sql.NullString{String: "Custom summary", Valid: true},
		Link:        sql.NullString{String: "https://example.com/more", Valid: true},
		LinkText:    sql.NullString{String: "Més info", Valid: true},
		IsVisible:   true,
		PublishDate: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateAnnouncement(context.Background(), a))

	got, err := repo.QueryRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, a.ID, got[0].ID)
	require.Equal(t, "Custom summary", got[0].Summary.String)
	require.Equal(t, "https://example.com/more", got[0].Link.String)
	require.Equal(t, "Més info", got[0].LinkText.String)
}

func TestQueryRecentEmpty(t *testing.T) {
	repo := newRepo(t)
	got, err := repo.QueryRecent(context.Background(), 4)
	require.NoError(t, err)
	require.Empty(t, got)
}
