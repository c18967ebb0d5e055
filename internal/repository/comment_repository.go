package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentColumns = "c.id, c.post_id, c.user_id, u.pseudo, c.content, c.upvotes, c.is_deleted, c.created_at, c.edited_at"

// LEFT JOIN: soft-deleted comments outlive their author's account, so the
// pseudo may be NULL.
const commentSelect = "SELECT " + commentColumns + " FROM comments c LEFT JOIN users u ON u.id = c.user_id"

// Create inserts a comment after verifying the post exists.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id=?", c.PostID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, content) VALUES (?,?,?)",
		c.PostID, c.UserID, c.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches one comment with its author pseudo and upvoter set.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	c, err := r.scanOne(r.DB.QueryRowContext(ctx, commentSelect+" WHERE c.id=?", id))
	if err != nil {
		return c, err
	}
	upvoters, err := r.upvotersFor(ctx, []uint64{c.ID})
	if err != nil {
		return c, err
	}
	c.UpvotedBy = upvoters[c.ID]
	if c.UpvotedBy == nil {
		c.UpvotedBy = []uint64{}
	}
	return c, nil
}

// ListByPost returns a post's visible comments, newest first. Soft-deleted
// comments are excluded from public listings but stay in the table.
func (r *CommentRepo) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	return r.list(ctx,
		commentSelect+" WHERE c.post_id=? AND c.is_deleted=0 ORDER BY c.created_at DESC, c.id DESC", postID)
}

// ListByUser returns one user's comments with the parent post titles
// attached, newest first.
func (r *CommentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+commentColumns+", p.title FROM comments c LEFT JOIN users u ON u.id=c.user_id JOIN posts p ON p.id=c.post_id "+
			"WHERE c.user_id=? ORDER BY c.created_at DESC, c.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var pseudo sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &pseudo, &c.Content,
			&c.Upvotes, &c.IsDeleted, &c.CreatedAt, &c.EditedAt, &c.PostTitle); err != nil {
			return nil, err
		}
		c.AuthorPseudo = pseudo.String
		c.UpvotedBy = []uint64{}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListUpvotedBy returns comments whose upvoter set contains the given user,
// with the parent post id available for linking.
func (r *CommentRepo) ListUpvotedBy(ctx context.Context, userID uint64) ([]model.Comment, error) {
	return r.list(ctx,
		commentSelect+" JOIN comment_upvotes cu ON cu.comment_id = c.id WHERE cu.user_id=? ORDER BY c.created_at DESC", userID)
}

// UpdateContent overwrites the comment body and stamps the edit time.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=?, edited_at=NOW() WHERE id=?", content, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByPost returns the number of comments remaining on a post.
func (r *CommentRepo) CountByPost(ctx context.Context, postID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE post_id=?", postID).Scan(&n)
	return n, err
}

// ToggleUpvote mirrors PostRepo.ToggleUpvote for comments: one transaction,
// junction-table insert decides the direction, audit row on add.
func (r *CommentRepo) ToggleUpvote(ctx context.Context, commentID, userID uint64) (added bool, err error) {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM comments WHERE id=?", commentID).Scan(&exists); err != nil {
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
		"INSERT IGNORE INTO comment_upvotes (comment_id, user_id) VALUES (?,?)", commentID, userID)
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
			"UPDATE comments SET upvotes = upvotes + 1 WHERE id=?", commentID); err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO upvote_records (user_id, comment_id) VALUES (?,?)", userID, commentID); err != nil {
			return false, err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM comment_upvotes WHERE comment_id=? AND user_id=?", commentID, userID); err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE comments SET upvotes = upvotes - 1 WHERE id=? AND upvotes > 0", commentID); err != nil {
			return false, err
		}
	}
	return added, tx.Commit()
}

// MarkDeletedByUser soft-deletes all of a user's comments, replacing their
// content with a placeholder. Used by the admin account-deletion path.
func (r *CommentRepo) MarkDeletedByUser(ctx context.Context, userID uint64, placeholder string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=?, is_deleted=1, edited_at=NOW() WHERE user_id=?",
		placeholder, userID)
	return err
}

// DeleteByUser hard-deletes all of a user's comments (self-service account
// deletion).
func (r *CommentRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE user_id=?", userID)
	return err
}

func (r *CommentRepo) scanOne(row *sql.Row) (model.Comment, error) {
	var c model.Comment
	var pseudo sql.NullString
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &pseudo, &c.Content,
		&c.Upvotes, &c.IsDeleted, &c.CreatedAt, &c.EditedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	c.AuthorPseudo = pseudo.String
	return c, err
}

func (r *CommentRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	ids := []uint64{}
	for rows.Next() {
		var c model.Comment
		var pseudo sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &pseudo, &c.Content,
			&c.Upvotes, &c.IsDeleted, &c.CreatedAt, &c.EditedAt); err != nil {
			return nil, err
		}
		c.AuthorPseudo = pseudo.String
		c.UpvotedBy = []uint64{}
		comments = append(comments, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	upvoters, err := r.upvotersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if ups, ok := upvoters[comments[i].ID]; ok {
			comments[i].UpvotedBy = ups
		}
	}
	return comments, nil
}

func (r *CommentRepo) upvotersFor(ctx context.Context, ids []uint64) (map[uint64][]uint64, error) {
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
		fmt.Sprintf("SELECT comment_id, user_id FROM comment_upvotes WHERE comment_id IN (%s) ORDER BY created_at", placeholders),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var commentID, userID uint64
		if err := rows.Scan(&commentID, &userID); err != nil {
			return nil, err
		}
		out[commentID] = append(out[commentID], userID)
	}
	return out, rows.Err()
}
