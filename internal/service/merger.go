package service

import (
	"sort"

	"noticeboard/internal/model"
)

// Merge 合并多个来源并按发布时间倒序排列，时间相同时保持输入顺序。
// 必须先整体排序再截断；limit <= 0 表示不限制。
func Merge(results [][]model.Announcement, limit int) []model.Announcement {
	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]model.Announcement, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	sortByRecency(merged)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func sortByRecency(items []model.Announcement) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
