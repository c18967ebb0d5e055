package handler

import (
	"sort"
	"strings"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

// normalizeTags lower-cases and trims incoming tags, dropping entries that
// end up empty. Applied at the boundary before anything is persisted.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// splitTags turns a comma-joined free-text tag string into trimmed tags.
func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// popularTags aggregates tag frequency across all posts' tag lists and
// returns the top entries sorted by count descending. Ties keep their
// first-encounter order, which the stable sort preserves.
func popularTags(lists [][]string, limit int) []model.TagCount {
	counts := map[string]int{}
	order := []string{}
	for _, tags := range lists {
		for _, t := range tags {
			if _, seen := counts[t]; !seen {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	out := make([]model.TagCount, 0, len(order))
	for _, name := range order {
		out = append(out, model.TagCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
