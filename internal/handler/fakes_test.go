package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/model"
	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// In-memory store fakes. They satisfy the store interfaces with just
// enough behavior for handler tests; no goroutine touches them
// concurrently, so no locking.

type fakeUsers struct {
	byID   map[uint64]model.User
	hashes map[uint64]string
	nextID uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}, hashes: map[uint64]string{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User, passwordHash string) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	if u.Role != model.RoleAdmin {
		u.Role = model.RoleUser
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = *u
	f.hashes[u.ID] = passwordHash
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			u.PasswordHash = f.hashes[u.ID]
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.PasswordHash = f.hashes[id]
	return u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) PseudosByIDs(_ context.Context, ids []uint64) ([]repository.PseudoRef, error) {
	out := []repository.PseudoRef{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, repository.PseudoRef{ID: u.ID, Pseudo: u.Pseudo})
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdatePseudo(_ context.Context, id uint64, pseudo string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Pseudo = pseudo
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id uint64, email string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range f.byID {
		if other.ID != id && other.Email == email {
			return repository.ErrEmailExists
		}
	}
	u.Email = email
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	f.hashes[id] = passwordHash
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, pseudo, email string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Pseudo, u.Email = pseudo, email
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.hashes, id)
	return nil
}

type fakePosts struct {
	byID     map[uint64]model.Post
	upvoters map[uint64]map[uint64]bool
	nextID   uint64

	archivedUsers []uint64
	deletedUsers  []uint64
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[uint64]model.Post{}, upvoters: map[uint64]map[uint64]bool{}}
}

func (f *fakePosts) add(p model.Post) model.Post {
	f.nextID++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	f.byID[p.ID] = p
	f.upvoters[p.ID] = map[uint64]bool{}
	return p
}

func (f *fakePosts) Create(_ context.Context, p *model.Post) error {
	*p = f.add(*p)
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id uint64) (model.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return model.Post{}, repository.ErrNotFound
	}
	p.UpvotedBy = []uint64{}
	for uid := range f.upvoters[id] {
		p.UpvotedBy = append(p.UpvotedBy, uid)
	}
	return p, nil
}

func (f *fakePosts) List(_ context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePosts) ListByTag(_ context.Context, tag string) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.byID {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakePosts) ListByUser(_ context.Context, userID uint64) ([]model.Post, error) {
	out := []model.Post{}
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) ListUpvotedBy(_ context.Context, userID uint64) ([]model.Post, error) {
	out := []model.Post{}
	for id, ups := range f.upvoters {
		if ups[userID] {
			out = append(out, f.byID[id])
		}
	}
	return out, nil
}

func (f *fakePosts) Update(_ context.Context, id uint64, title, content string, tags []string, state string) error {
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	p.Title, p.Content, p.Tags, p.State, p.EditedAt = title, content, tags, state, &now
	f.byID[id] = p
	return nil
}

func (f *fakePosts) UpdateState(_ context.Context, id uint64, state string) error {
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	p.State, p.EditedAt = state, &now
	f.byID[id] = p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.upvoters, id)
	return nil
}

func (f *fakePosts) ToggleUpvote(_ context.Context, postID, userID uint64) (bool, error) {
	p, ok := f.byID[postID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if f.upvoters[postID][userID] {
		delete(f.upvoters[postID], userID)
		p.Upvotes--
	} else {
		f.upvoters[postID][userID] = true
		p.Upvotes++
	}
	f.byID[postID] = p
	return f.upvoters[postID][userID], nil
}

func (f *fakePosts) AllTags(_ context.Context) ([][]string, error) {
	out := [][]string{}
	for id := uint64(1); id <= f.nextID; id++ {
		if p, ok := f.byID[id]; ok {
			out = append(out, p.Tags)
		}
	}
	return out, nil
}

func (f *fakePosts) ArchiveByUser(_ context.Context, userID uint64, placeholder string) error {
	f.archivedUsers = append(f.archivedUsers, userID)
	for id, p := range f.byID {
		if p.UserID == userID {
			p.Content, p.State = placeholder, model.StateArchived
			f.byID[id] = p
		}
	}
	return nil
}

func (f *fakePosts) DeleteByUser(_ context.Context, userID uint64) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	for id, p := range f.byID {
		if p.UserID == userID {
			delete(f.byID, id)
			delete(f.upvoters, id)
		}
	}
	return nil
}

type fakeComments struct {
	byID     map[uint64]model.Comment
	upvoters map[uint64]map[uint64]bool
	posts    *fakePosts
	nextID   uint64

	markedUsers  []uint64
	deletedUsers []uint64
}

func newFakeComments(posts *fakePosts) *fakeComments {
	return &fakeComments{byID: map[uint64]model.Comment{}, upvoters: map[uint64]map[uint64]bool{}, posts: posts}
}

func (f *fakeComments) Create(_ context.Context, cm *model.Comment) error {
	if f.posts != nil {
		if _, ok := f.posts.byID[cm.PostID]; !ok {
			return repository.ErrNotFound
		}
	}
	f.nextID++
	cm.ID = f.nextID
	cm.CreatedAt = time.Now()
	f.byID[cm.ID] = *cm
	f.upvoters[cm.ID] = map[uint64]bool{}
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id uint64) (model.Comment, error) {
	cm, ok := f.byID[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return cm, nil
}

func (f *fakeComments) ListByPost(_ context.Context, postID uint64) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, cm := range f.byID {
		if cm.PostID == postID && !cm.IsDeleted {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeComments) ListByUser(_ context.Context, userID uint64) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, cm := range f.byID {
		if cm.UserID == userID {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeComments) ListUpvotedBy(_ context.Context, userID uint64) ([]model.Comment, error) {
	out := []model.Comment{}
	for id, ups := range f.upvoters {
		if ups[userID] {
			out = append(out, f.byID[id])
		}
	}
	return out, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id uint64, content string) error {
	cm, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	cm.Content, cm.EditedAt = content, &now
	f.byID[id] = cm
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.upvoters, id)
	return nil
}

func (f *fakeComments) CountByPost(_ context.Context, postID uint64) (int, error) {
	n := 0
	for _, cm := range f.byID {
		if cm.PostID == postID && !cm.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeComments) ToggleUpvote(_ context.Context, commentID, userID uint64) (bool, error) {
	cm, ok := f.byID[commentID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if f.upvoters[commentID][userID] {
		delete(f.upvoters[commentID], userID)
		cm.Upvotes--
	} else {
		f.upvoters[commentID][userID] = true
		cm.Upvotes++
	}
	f.byID[commentID] = cm
	return f.upvoters[commentID][userID], nil
}

func (f *fakeComments) MarkDeletedByUser(_ context.Context, userID uint64, placeholder string) error {
	f.markedUsers = append(f.markedUsers, userID)
	for id, cm := range f.byID {
		if cm.UserID == userID {
			cm.Content, cm.IsDeleted = placeholder, true
			f.byID[id] = cm
		}
	}
	return nil
}

func (f *fakeComments) DeleteByUser(_ context.Context, userID uint64) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	for id, cm := range f.byID {
		if cm.UserID == userID {
			delete(f.byID, id)
			delete(f.upvoters, id)
		}
	}
	return nil
}

type fakeLists struct {
	byUser map[uint64]*model.MyList
	nextID uint64
}

func newFakeLists() *fakeLists {
	return &fakeLists{byUser: map[uint64]*model.MyList{}}
}

func (f *fakeLists) create(userID uint64) *model.MyList {
	f.nextID++
	l := &model.MyList{ID: f.nextID, UserID: userID, Posts: []uint64{}, Comments: []uint64{}, Tags: []string{}}
	f.byUser[userID] = l
	return l
}

func (f *fakeLists) byListID(id uint64) *model.MyList {
	for _, l := range f.byUser {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (f *fakeLists) GetByUser(_ context.Context, userID uint64) (model.MyList, error) {
	l, ok := f.byUser[userID]
	if !ok {
		return model.MyList{}, repository.ErrNotFound
	}
	return *l, nil
}

func toggleRef(refs []uint64, id uint64) []uint64 {
	for i, r := range refs {
		if r == id {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return append(refs, id)
}

func (f *fakeLists) TogglePost(_ context.Context, listID, postID uint64) error {
	l := f.byListID(listID)
	if l == nil {
		return repository.ErrNotFound
	}
	l.Posts = toggleRef(l.Posts, postID)
	return nil
}

func (f *fakeLists) ToggleComment(_ context.Context, listID, commentID uint64) error {
	l := f.byListID(listID)
	if l == nil {
		return repository.ErrNotFound
	}
	l.Comments = toggleRef(l.Comments, commentID)
	return nil
}

func (f *fakeLists) SetTags(_ context.Context, listID uint64, tags []string) error {
	l := f.byListID(listID)
	if l == nil {
		return repository.ErrNotFound
	}
	l.Tags = tags
	return nil
}

type fakeUpvotes struct {
	records []model.UpvoteRecord
}

func (f *fakeUpvotes) ListRecent(_ context.Context, limit int) ([]model.UpvoteRecord, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeMailer struct {
	sent []struct{ To, Subject, Body string }
}

func (f *fakeMailer) Send(to, subject, body string) {
	f.sent = append(f.sent, struct{ To, Subject, Body string }{to, subject, body})
}

// ----- request plumbing -----

func newTestContext(t *testing.T, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	r := httptest.NewRequest(method, target, nil)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = httptest.NewRequest(method, target, bytes.NewReader(b))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(r, rec), rec
}

func asUser(c echo.Context, id uint64, role string) {
	c.Set(middleware.CtxUserID, id)
	c.Set(middleware.CtxRole, role)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
