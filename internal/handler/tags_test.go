package handler

import (
	"reflect"
	"testing"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{"  Cats ", "DOGS", "", "  ", "go"})
	want := []string{"cats", "dogs", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeTags = %v, want %v", got, want)
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags(" go , web,, backend ")
	want := []string{"go", "web", "backend"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitTags = %v, want %v", got, want)
	}
}

func TestSplitTagsEmpty(t *testing.T) {
	if got := splitTags("  "); len(got) != 0 {
		t.Errorf("splitTags on blank input = %v, want empty", got)
	}
}

func TestPopularTagsOrderAndTies(t *testing.T) {
	lists := [][]string{
		{"a", "b"},
		{"a", "c"},
		{"a", "b", "c", "d"},
		{"a", "a"}, // duplicate within one post still counts twice
		{"b"},
	}
	got := popularTags(lists, 10)
	// a:5, b:3, c:2, d:1 — ties would keep first-encounter order.
	want := []model.TagCount{
		{Name: "a", Count: 5},
		{Name: "b", Count: 3},
		{Name: "c", Count: 2},
		{Name: "d", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("popularTags = %v, want %v", got, want)
	}
}

func TestPopularTagsTieBreakFirstEncounter(t *testing.T) {
	lists := [][]string{
		{"zeta"},
		{"alpha"},
		{"zeta", "alpha"},
	}
	got := popularTags(lists, 10)
	// Both count 2; zeta was seen first so it stays first.
	if len(got) != 2 || got[0].Name != "zeta" || got[1].Name != "alpha" {
		t.Errorf("tie-break order = %v, want [zeta alpha]", got)
	}
}

func TestPopularTagsTruncates(t *testing.T) {
	lists := [][]string{{"a", "b", "c", "d", "e"}}
	got := popularTags(lists, 3)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestPopularTagsNoPosts(t *testing.T) {
	got := popularTags(nil, 10)
	if len(got) != 0 {
		t.Errorf("popularTags(nil) = %v, want empty", got)
	}
}
