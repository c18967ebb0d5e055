package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

type MyListRepo struct{ DB *sql.DB }

func NewMyListRepo(db *sql.DB) *MyListRepo { return &MyListRepo{DB: db} }

// GetByUser loads the user's saved list with its post and comment refs.
func (r *MyListRepo) GetByUser(ctx context.Context, userID uint64) (model.MyList, error) {
	var l model.MyList
	var tags []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, tags FROM my_lists WHERE user_id=? LIMIT 1", userID).
		Scan(&l.ID, &l.UserID, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	if err != nil {
		return l, err
	}
	l.Tags = unmarshalStrings(tags)

	l.Posts, err = r.refs(ctx, "SELECT post_id FROM my_list_posts WHERE list_id=? ORDER BY post_id", l.ID)
	if err != nil {
		return l, err
	}
	l.Comments, err = r.refs(ctx, "SELECT comment_id FROM my_list_comments WHERE list_id=? ORDER BY comment_id", l.ID)
	return l, err
}

// TogglePost adds the post ref to the list, or removes it when already
// present. The junction-table insert decides the direction atomically.
func (r *MyListRepo) TogglePost(ctx context.Context, listID, postID uint64) error {
	return r.toggle(ctx,
		"INSERT IGNORE INTO my_list_posts (list_id, post_id) VALUES (?,?)",
		"DELETE FROM my_list_posts WHERE list_id=? AND post_id=?",
		listID, postID)
}

// ToggleComment mirrors TogglePost for comment refs.
func (r *MyListRepo) ToggleComment(ctx context.Context, listID, commentID uint64) error {
	return r.toggle(ctx,
		"INSERT IGNORE INTO my_list_comments (list_id, comment_id) VALUES (?,?)",
		"DELETE FROM my_list_comments WHERE list_id=? AND comment_id=?",
		listID, commentID)
}

// SetTags replaces the list's tag set wholesale.
func (r *MyListRepo) SetTags(ctx context.Context, listID uint64, tags []string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE my_lists SET tags=? WHERE id=?", marshalStrings(tags), listID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM my_lists WHERE id=?", listID).Scan(&one); err != nil {
			return ErrNotFound
		}
	}
	return nil
}

func (r *MyListRepo) toggle(ctx context.Context, insert, remove string, listID, refID uint64) error {
	res, err := r.DB.ExecContext(ctx, insert, listID, refID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.DB.ExecContext(ctx, remove, listID, refID)
	}
	return err
}

func (r *MyListRepo) refs(ctx context.Context, query string, listID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
