package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rebbitapp/rebbit-api/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,pseudo,name,surname,email,password_hash,birthdate,role,created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Pseudo, &u.Name, &u.Surname, &u.Email,
		&u.PasswordHash, &u.Birthdate, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts the user and their (initially empty) saved list in one
// transaction and fills in the generated id.
func (r *UserRepo) Create(ctx context.Context, u *model.User, passwordHash string) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role != model.RoleAdmin {
		u.Role = model.RoleUser
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (pseudo, name, surname, email, password_hash, birthdate, role) VALUES (?,?,?,?,?,?,?)",
		u.Pseudo, u.Name, u.Surname, u.Email, passwordHash, u.Birthdate, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	// One saved list per user, created with the account.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO my_lists (user_id, tags) VALUES (?, ?)", u.ID, marshalStrings(nil)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	u.CreatedAt = time.Now().UTC()
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Pseudo, &u.Name, &u.Surname, &u.Email,
			&u.PasswordHash, &u.Birthdate, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PseudoRef pairs a user id with its pseudo for bulk reference resolution.
type PseudoRef struct {
	ID     uint64 `json:"id"`
	Pseudo string `json:"pseudo"`
}

// PseudosByIDs resolves a set of user ids to their pseudos.
func (r *UserRepo) PseudosByIDs(ctx context.Context, ids []uint64) ([]PseudoRef, error) {
	if len(ids) == 0 {
		return []PseudoRef{}, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT id, pseudo FROM users WHERE id IN (%s)", placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []PseudoRef{}
	for rows.Next() {
		var ref PseudoRef
		if err := rows.Scan(&ref.ID, &ref.Pseudo); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// UpdatePseudo sets a new display name.
func (r *UserRepo) UpdatePseudo(ctx context.Context, id uint64, pseudo string) error {
	return r.exec(ctx, "UPDATE users SET pseudo=? WHERE id=?", pseudo, id)
}

// UpdateEmail sets a new (normalized) email address.
func (r *UserRepo) UpdateEmail(ctx context.Context, id uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.exec(ctx, "UPDATE users SET email=? WHERE id=?", email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword overwrites the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	return r.exec(ctx, "UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
}

// UpdateProfile sets pseudo and email together (admin edit).
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, pseudo, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.exec(ctx, "UPDATE users SET pseudo=?, email=? WHERE id=?", pseudo, email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// Delete removes the user record together with their saved list.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM my_lists WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero when the new value equals the old one;
		// verify existence before reporting a missing record.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", args[len(args)-1]).Scan(&one); err != nil {
			return ErrNotFound
		}
	}
	return nil
}
