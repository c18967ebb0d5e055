package model

import "time"

// Comment belongs to one post and one user. Soft-deleted comments keep
// their row (IsDeleted=true) and are excluded from public listings.
//
// AuthorPseudo and PostTitle are populated by queries that join the
// respective tables; they are empty on writes.
type Comment struct {
    ID           uint64     `json:"id"`
    PostID       uint64     `json:"post"`
    UserID       uint64     `json:"user"`
    AuthorPseudo string     `json:"pseudo,omitempty"`
    PostTitle    string     `json:"postTitle,omitempty"`
    Content      string     `json:"content"`
    Upvotes      int        `json:"upvotes"`
    UpvotedBy    []uint64   `json:"upvotedBy"`
    IsDeleted    bool       `json:"isDeleted"`
    CreatedAt    time.Time  `json:"date_created"`
    EditedAt     *time.Time `json:"date_edited,omitempty"`
}
