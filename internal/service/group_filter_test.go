package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"

	"noticeboard/internal/model"
	"noticeboard/internal/service"
)

func TestIsVisible(t *testing.T) {
	api := model.Announcement{Source: model.SourceRemote, Groups: []string{"API"}}
	none := model.Announcement{Source: model.SourceRemote}

	require.True(t, service.IsVisible(api, sets.New("API")))
	require.False(t, service.IsVisible(api, sets.New("other")))
	require.True(t, service.IsVisible(api, sets.New("other", "API")))
	require.False(t, service.IsVisible(none, sets.New("API")))
	require.False(t, service.IsVisible(none, sets.New[string]()))
}

func TestFilterByGroups(t *testing.T) {
	items := []model.Announcement{
		{ID: "1", Source: model.SourceRemote, Groups: []string{"everyone"}},
		{ID: "2", Source: model.SourceRemote, Groups: []string{"API", "staff"}},
		{ID: "3", Source: model.SourceRemote},
		{ID: "4", Source: model.SourceLocal},
	}

	got := service.FilterByGroups(items, sets.New("API"))
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "4", got[1].ID)

	require.Equal(t, items, service.FilterByGroups(items, nil))
}
