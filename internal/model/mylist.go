package model

// MyList is a user's personal saved-items list. Exactly one list exists per
// user (enforced by a uniqueness constraint); it is created together with
// the account at registration. Post and comment references toggle: saving
// an already-saved item removes it.
type MyList struct {
    ID       uint64   `json:"id"`
    UserID   uint64   `json:"user"`
    Posts    []uint64 `json:"post"`
    Comments []uint64 `json:"comment"`
    Tags     []string `json:"tags"`
}
