package model

import "time"

// UpvoteRecord is an append-only audit row written whenever an upvote is
// added to a post or a comment. Exactly one of PostID/CommentID is set.
// Removing an upvote does not remove the record.
type UpvoteRecord struct {
    ID        uint64    `json:"id"`
    UserID    uint64    `json:"user"`
    PostID    *uint64   `json:"post,omitempty"`
    CommentID *uint64   `json:"comment,omitempty"`
    CreatedAt time.Time `json:"date"`
}
