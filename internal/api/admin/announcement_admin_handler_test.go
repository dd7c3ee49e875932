package admin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/api/admin"
	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/nextcloud"
	"noticeboard/internal/service"
	"noticeboard/pkg/logger"
)

type fakeWriter struct {
	created []*model.LocalAnnouncement
	err     error
}

func (w *fakeWriter) CreateAnnouncement(_ context.Context, a *model.LocalAnnouncement) error {
	if w.err != nil {
		return w.err
	}
	a.ID = int64(len(w.created) + 1)
	w.created = append(w.created, a)
	return nil
}

type fakeRemote struct {
	purged  int
	outcome service.RevalidateOutcome
	err     error
}

func (r *fakeRemote) Purge(context.Context) error {
	r.purged++
	return r.err
}

func (r *fakeRemote) Revalidate(context.Context) (service.RevalidateOutcome, error) {
	return r.outcome, r.err
}

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, writer *fakeWriter, remote *fakeRemote, path, body string) response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin.RegisterAdminRoutes(r.Group("/admin"), admin.NewAnnouncementAdminHandler(writer, remote, logger.NewNop()))

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateAnnouncement(t *testing.T) {
	writer := &fakeWriter{}
	resp := do(t, writer, &fakeRemote{}, "/admin/announcements/create",
		`{"title":"Horari","content":"<p>Nou horari</p>","link":" https://example.com/h ","link_text":"Veure","publish_date":"2024-05-20T09:00:00Z"}`)

	require.Equal(t, 200, resp.Code)
	require.Len(t, writer.created, 1)
	a := writer.created[0]
	require.Equal(t, "系统管理员", a.Author)
	require.True(t, a.IsVisible)
	require.False(t, a.Summary.Valid)
	require.Equal(t, "https://example.com/h", a.Link.String)
	require.Equal(t, "Veure", a.LinkText.String)
	require.True(t, a.PublishDate.Equal(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)))
	require.JSONEq(t, `{"id":1,"publish_date":"2024-05-20T09:00:00Z"}`, string(resp.Data))
}

func TestCreateAnnouncementHidden(t *testing.T) {
	writer := &fakeWriter{}
	resp := do(t, writer, &fakeRemote{}, "/admin/announcements/create", `{"title":"t","content":"c","is_visible":false,"author":"ed"}`)
	require.Equal(t, 200, resp.Code)
	require.False(t, writer.created[0].IsVisible)
	require.Equal(t, "ed", writer.created[0].Author)
}

func TestCreateAnnouncementErrors(t *testing.T) {
	resp := do(t, &fakeWriter{}, &fakeRemote{}, "/admin/announcements/create", `{"content":"no title"}`)
	require.Equal(t, 400, resp.Code)

	resp = do(t, &fakeWriter{err: errors.New("db down")}, &fakeRemote{}, "/admin/announcements/create", `{"title":"t","content":"c"}`)
	require.Equal(t, 500, resp.Code)
}

func TestPurgeCache(t *testing.T) {
	remote := &fakeRemote{}
	resp := do(t, &fakeWriter{}, remote, "/admin/announcements/cache/purge", "")
	require.Equal(t, 200, resp.Code)
	require.Equal(t, constants.SuccessCachePurged, resp.Msg)
	require.Equal(t, 1, remote.purged)

	resp = do(t, &fakeWriter{}, &fakeRemote{err: errors.New("redis down")}, "/admin/announcements/cache/purge", "")
	require.Equal(t, 500, resp.Code)
}

func TestRefreshCache(t *testing.T) {
	resp := do(t, &fakeWriter{}, &fakeRemote{outcome: service.RevalidateNotModified}, "/admin/announcements/cache/refresh", "")
	require.Equal(t, 200, resp.Code)
	require.JSONEq(t, `{"outcome":"not_modified"}`, string(resp.Data))

	resp = do(t, &fakeWriter{}, &fakeRemote{err: &nextcloud.NetworkError{StatusCode: 503}}, "/admin/announcements/cache/refresh", "")
	require.Equal(t, 502, resp.Code)
	require.Equal(t, constants.MsgRemoteUnavailable, resp.Msg)
}
