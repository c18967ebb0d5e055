package handler

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

func TestMyListTogglePost(t *testing.T) {
	lists := newFakeLists()
	lists.create(1)
	h := NewMyListHandler(lists, nopLogger())

	save := func() model.MyList {
		c, rec := newTestContext(t, http.MethodPut, "/api/mylist/posts/42", nil)
		asUser(c, 1, model.RoleUser)
		withParam(c, "id", "42")
		if err := h.TogglePost(c); err != nil {
			t.Fatalf("TogglePost: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var l model.MyList
		decodeBody(t, rec, &l)
		return l
	}

	l := save()
	if !reflect.DeepEqual(l.Posts, []uint64{42}) {
		t.Errorf("posts = %v, want [42]", l.Posts)
	}
	// Saving again removes the reference.
	l = save()
	if len(l.Posts) != 0 {
		t.Errorf("posts = %v, want empty after second toggle", l.Posts)
	}
}

func TestMyListToggleCommentMissingList(t *testing.T) {
	h := NewMyListHandler(newFakeLists(), nopLogger())

	c, rec := newTestContext(t, http.MethodPut, "/api/mylist/comments/7", nil)
	asUser(c, 1, model.RoleUser)
	withParam(c, "id", "7")
	if err := h.ToggleComment(c); err != nil {
		t.Fatalf("ToggleComment: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp struct {
		Msg string `json:"msg"`
	}
	decodeBody(t, rec, &resp)
	if resp.Msg != "list not found" {
		t.Errorf("msg = %q", resp.Msg)
	}
}

func TestMyListSetTagsSplitsFreeText(t *testing.T) {
	lists := newFakeLists()
	lists.create(1)
	h := NewMyListHandler(lists, nopLogger())

	c, rec := newTestContext(t, http.MethodPut, "/api/mylist/tags",
		map[string]string{"tags": " go , web,backend "})
	asUser(c, 1, model.RoleUser)
	if err := h.SetTags(c); err != nil {
		t.Fatalf("SetTags: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var l model.MyList
	decodeBody(t, rec, &l)
	want := []string{"go", "web", "backend"}
	if !reflect.DeepEqual(l.Tags, want) {
		t.Errorf("tags = %v, want %v", l.Tags, want)
	}
}
