package service

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"noticeboard/internal/model"
)

// IsVisible 公告所属群组与目标群组有交集时可见
func IsVisible(a model.Announcement, targets sets.Set[string]) bool {
	for _, g := range a.Groups {
		if targets.Has(g) {
			return true
		}
	}
	return false
}

// FilterByGroups 过滤远程公告，本地公告总是保留；targets 为 nil 时不过滤
func FilterByGroups(items []model.Announcement, targets sets.Set[string]) []model.Announcement {
	if targets == nil {
		return items
	}
	out := make([]model.Announcement, 0, len(items))
	for _, a := range items {
		if a.Source != model.SourceRemote || IsVisible(a, targets) {
			out = append(out, a)
		}
	}
	return out
}
