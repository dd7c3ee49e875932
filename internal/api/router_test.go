package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"noticeboard/config"
	"noticeboard/internal/api"
	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/database"
	"noticeboard/pkg/logger"
)

const remotePayload = `{"ocs":{"meta":{"status":"ok"},"data":[
	{"id":11,"author_id":"admin","time":1716109200,"subject":"Remote news","message":"A **remote** message","groups":[{"id":"API","name":"API"}]},
	{"id":12,"author_id":"admin","time":1716195600,"subject":"Hidden","message":"other group","groups":[{"id":"staff","name":"Staff"}]}
]}}`

func setup(t *testing.T) (http.Handler, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	nc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(remotePayload))
	}))
	t.Cleanup(nc.Close)

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewAnnouncementRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.CreateAnnouncement(context.Background(), &model.LocalAnnouncement{
		Author:      "admin",
		Title:       "Local news",
		Content:     "<p>Local body</p>",
		IsVisible:   true,
		PublishDate: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
	}))

	hash, err := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		LogLevel: "debug",
		Remote: config.RemoteConfig{
			BaseURL:       nc.URL,
			Username:      "bot",
			Password:      "secret",
			Format:        "json",
			SyncFrequency: time.Hour,
			Timeout:       time.Second,
			Groups:        []string{"API"},
		},
		Board: config.BoardConfig{DefaultLimit: 4, ExcerptLength: 165},
		Admin: config.AdminConfig{TokenHash: string(hash)},
	}
	return api.SetupRouter(cfg, logger.NewNop(), db, nil, prometheus.NewRegistry()), hits
}

func get(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterRendersBothSources(t *testing.T) {
	h, hits := setup(t)

	w := get(t, h, http.MethodGet, "/api/v1/announcements", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `id="announcement-local-1"`)
	require.Contains(t, body, `id="announcement-remote-11"`)
	require.NotContains(t, body, "announcement-remote-12")
	require.Contains(t, body, "<strong>remote</strong>")
	require.Less(t, strings.Index(body, "announcement-local-1"), strings.Index(body, "announcement-remote-11"))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(t, h, http.MethodGet, "/api/v1/announcements?format=json&source=remote", "")
	require.Contains(t, w.Body.String(), `"id":"11"`)
	require.Equal(t, int32(1), hits.Load())
}

func TestRouterHealthAndMetrics(t *testing.T) {
	h, _ := setup(t)

	w := get(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	get(t, h, http.MethodGet, "/api/v1/announcements", "")
	w = get(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `noticeboard_cache_lookups_total{result="miss"} 1`)
	require.Contains(t, w.Body.String(), `noticeboard_remote_fetch_total{result="ok"} 1`)
}

func TestRouterAdminRoutes(t *testing.T) {
	h, hits := setup(t)

	w := get(t, h, http.MethodPost, "/api/v1/admin/announcements/cache/purge", "")
	require.Contains(t, w.Body.String(), `"code":401`)

	get(t, h, http.MethodGet, "/api/v1/announcements", "")
	w = get(t, h, http.MethodPost, "/api/v1/admin/announcements/cache/purge", "token")
	require.Contains(t, w.Body.String(), `"code":200`)

	get(t, h, http.MethodGet, "/api/v1/announcements", "")
	require.Equal(t, int32(2), hits.Load())

	w = get(t, h, http.MethodPost, "/api/v1/admin/announcements/cache/refresh", "token")
	require.Contains(t, w.Body.String(), `"outcome":"updated"`)
	require.Equal(t, int32(3), hits.Load())
}
