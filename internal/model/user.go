package model

import "time"

// Role values stored in users.role. New accounts default to RoleUser.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table. The password hash never leaves the repository layer in API
// responses; the json tag strips it during serialization.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Pseudo       – display name shown next to posts and comments.
//  Name         – family name (optional).
//  Surname      – given name (optional).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Birthdate    – date of birth.
//  Role         – "user" or "admin".
//  CreatedAt    – timestamp of registration.
type User struct {
    ID           uint64    `json:"id"`
    Pseudo       string    `json:"pseudo"`
    Name         string    `json:"name,omitempty"`
    Surname      string    `json:"surname,omitempty"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Birthdate    time.Time `json:"birthdate"`
    Role         string    `json:"role"`
    CreatedAt    time.Time `json:"created_at"`
}
