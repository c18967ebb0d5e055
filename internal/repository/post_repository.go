package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

const postColumns = "p.id, p.user_id, u.pseudo, p.title, p.content, p.tags, p.state, p.images, p.upvotes, p.created_at, p.edited_at"

// LEFT JOIN: posts survive their author's account (moderation keeps them
// archived), so the pseudo may be NULL.
const postSelect = "SELECT " + postColumns + " FROM posts p LEFT JOIN users u ON u.id = p.user_id"

// Create inserts a post and fills in the generated id.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (user_id, title, content, tags, state, images) VALUES (?,?,?,?,?,?)",
		p.UserID, p.Title, p.Content, marshalStrings(p.Tags), p.State, marshalStrings(p.Images))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches one post with its author pseudo and upvoter set.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	p, err := r.scanOne(r.DB.QueryRowContext(ctx, postSelect+" WHERE p.id=?", id))
	if err != nil {
		return p, err
	}
	upvoters, err := r.upvotersFor(ctx, []uint64{p.ID})
	if err != nil {
		return p, err
	}
	p.UpvotedBy = upvoters[p.ID]
	return p, nil
}

// List returns all posts, newest first.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	return r.list(ctx, postSelect+" ORDER BY p.created_at DESC, p.id DESC")
}

// ListByTag returns posts carrying the given tag, newest first. Tags are
// stored as a JSON array so membership is tested in SQL.
func (r *PostRepo) ListByTag(ctx context.Context, tag string) ([]model.Post, error) {
	return r.list(ctx,
		postSelect+" WHERE JSON_CONTAINS(p.tags, JSON_QUOTE(?)) ORDER BY p.created_at DESC, p.id DESC", tag)
}

// ListByUser returns one user's posts, newest first.
func (r *PostRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Post, error) {
	return r.list(ctx,
		postSelect+" WHERE p.user_id=? ORDER BY p.created_at DESC, p.id DESC", userID)
}

// ListUpvotedBy returns posts whose upvoter set contains the given user.
func (r *PostRepo) ListUpvotedBy(ctx context.Context, userID uint64) ([]model.Post, error) {
	return r.list(ctx,
		postSelect+" JOIN post_upvotes pu ON pu.post_id = p.id WHERE pu.user_id=? ORDER BY p.created_at DESC", userID)
}

// Update overwrites title, content, tags and state and stamps the edit time.
func (r *PostRepo) Update(ctx context.Context, id uint64, title, content string, tags []string, state string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET title=?, content=?, tags=?, state=?, edited_at=NOW() WHERE id=?",
		title, content, marshalStrings(tags), state, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState changes only the post state and stamps the edit time.
func (r *PostRepo) UpdateState(ctx context.Context, id uint64, state string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET state=?, edited_at=NOW() WHERE id=?", state, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post. Its comments and upvote rows go with it via the
// ON DELETE CASCADE constraints.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleUpvote atomically adds or removes userID from the post's upvoter
// set, keeping the denormalized counter in lockstep. The junction table's
// primary key makes concurrent toggles by the same user yield exactly one
// upvote: only the insert that affected a row increments the counter.
// Adding an upvote also writes an audit row to upvote_records.
func (r *PostRepo) ToggleUpvote(ctx context.Context, postID, userID uint64) (added bool, err error) {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id=?", postID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO post_upvotes (post_id, user_id) VALUES (?,?)", postID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		added = true
		if _, err := tx.ExecContext(ctx,
			"UPDATE posts SET upvotes = upvotes + 1 WHERE id=?", postID); err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO upvote_records (user_id, post_id) VALUES (?,?)", userID, postID); err != nil {
			return false, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM post_upvotes WHERE post_id=? AND user_id=?", postID, userID); err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE posts SET upvotes = upvotes - 1 WHERE id=? AND upvotes > 0", postID); err != nil {
			return false, err
		}
	}
	return added, tx.Commit()
}

// AllTags returns every post's tag list in post encounter order. The
// popular-tags aggregation runs over this in the handler layer.
func (r *PostRepo) AllTags(ctx context.Context) ([][]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT tags FROM posts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists [][]string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		lists = append(lists, unmarshalStrings(raw))
	}
	return lists, rows.Err()
}

// ArchiveByUser rewrites all of a user's posts with placeholder content and
// archives them. Used by the admin account-deletion path, which preserves
// the records for audit instead of removing them.
func (r *PostRepo) ArchiveByUser(ctx context.Context, userID uint64, placeholder string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET content=?, state=?, edited_at=NOW() WHERE user_id=?",
		placeholder, model.StateArchived, userID)
	return err
}

// DeleteByUser hard-deletes all of a user's posts (self-service account
// deletion). Comments on those posts cascade with them.
func (r *PostRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE user_id=?", userID)
	return err
}

func (r *PostRepo) scanOne(row *sql.Row) (model.Post, error) {
	var p model.Post
	var pseudo sql.NullString
	var tags, images []byte
	err := row.Scan(&p.ID, &p.UserID, &pseudo, &p.Title, &p.Content,
		&tags, &p.State, &images, &p.Upvotes, &p.CreatedAt, &p.EditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.AuthorPseudo = pseudo.String
	p.Tags = unmarshalStrings(tags)
	p.Images = unmarshalStrings(images)
	p.UpvotedBy = []uint64{}
	return p, nil
}

func (r *PostRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	ids := []uint64{}
	for rows.Next() {
		var p model.Post
		var pseudo sql.NullString
		var tags, images []byte
		if err := rows.Scan(&p.ID, &p.UserID, &pseudo, &p.Title, &p.Content,
			&tags, &p.State, &images, &p.Upvotes, &p.CreatedAt, &p.EditedAt); err != nil {
			return nil, err
		}
		p.AuthorPseudo = pseudo.String
		p.Tags = unmarshalStrings(tags)
		p.Images = unmarshalStrings(images)
		p.UpvotedBy = []uint64{}
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	upvoters, err := r.upvotersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if ups, ok := upvoters[posts[i].ID]; ok {
			posts[i].UpvotedBy = ups
		}
	}
	return posts, nil
}

// upvotersFor loads the upvoter sets for a batch of posts in one query.
func (r *PostRepo) upvotersFor(ctx context.Context, ids []uint64) (map[uint64][]uint64, error) {
	out := map[uint64][]uint64{}
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT post_id, user_id FROM post_upvotes WHERE post_id IN (%s) ORDER BY created_at", placeholders),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postID, userID uint64
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], userID)
	}
	return out, rows.Err()
}
