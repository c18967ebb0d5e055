package repository

import (
	"context"
	"database/sql"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

// UpvoteRepo reads the append-only upvote audit trail. Rows are written by
// the post and comment toggle transactions; this repository only queries.
type UpvoteRepo struct{ DB *sql.DB }

func NewUpvoteRepo(db *sql.DB) *UpvoteRepo { return &UpvoteRepo{DB: db} }

// ListRecent returns the newest audit records, capped at limit.
func (r *UpvoteRepo) ListRecent(ctx context.Context, limit int) ([]model.UpvoteRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, post_id, comment_id, created_at FROM upvote_records ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.UpvoteRecord{}
	for rows.Next() {
		var rec model.UpvoteRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PostID, &rec.CommentID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
