package model

import "time"

// Post states. Transitions between states are unconstrained; any authorized
// actor may set any value.
const (
    StateDraft     = "draft"
    StatePublished = "published"
    StateArchived  = "archived"
)

// ValidState reports whether s is one of the three post states.
func ValidState(s string) bool {
    return s == StateDraft || s == StatePublished || s == StateArchived
}

// Post is a forum post. Tags and Images are stored as ordered JSON arrays
// in the `posts` table; the upvoter set lives in the `post_upvotes` junction
// table and Upvotes is the denormalized count kept in lockstep with it.
//
// AuthorPseudo is populated by list/detail queries that join the author;
// it is empty on writes. Comments is filled only by the post detail query.
type Post struct {
    ID           uint64     `json:"id"`
    UserID       uint64     `json:"user"`
    AuthorPseudo string     `json:"pseudo,omitempty"`
    Title        string     `json:"title"`
    Content      string     `json:"content"`
    Tags         []string   `json:"tags"`
    State        string     `json:"state"`
    Images       []string   `json:"images"`
    Upvotes      int        `json:"upvotes"`
    UpvotedBy    []uint64   `json:"upvotedBy"`
    CreatedAt    time.Time  `json:"date_created"`
    EditedAt     *time.Time `json:"date_edited,omitempty"`
    Comments     []Comment  `json:"comments,omitempty"`
}

// TagCount is one entry of the popular-tags aggregation.
type TagCount struct {
    Name  string `json:"name"`
    Count int    `json:"count"`
}
