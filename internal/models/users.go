package models

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, firstname, lastname, username, email, password_hash, image_file, created_at`

func scanUser(row scanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Username, &u.Email, &u.PasswordHash, &u.ImageFile, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueViolation maps SQLite UNIQUE failures on the users table to the
// matching sentinel error and returns any other error unchanged.
func uniqueViolation(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	}
	return err
}

// CreateUser inserts u and sets its ID. PasswordHash must already be hashed.
func CreateUser(ctx context.Context, db *sql.DB, u *User) error {
	if u.ImageFile == "" {
		u.ImageFile = DefaultImageFile
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (firstname, lastname, username, email, password_hash, image_file) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Firstname, u.Lastname, u.Username, u.Email, u.PasswordHash, u.ImageFile)
	if err != nil {
		return uniqueViolation(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	return nil
}

func GetUserByID(ctx context.Context, db *sql.DB, id int) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// UsernameTaken reports whether another user already holds username.
func UsernameTaken(ctx context.Context, db *sql.DB, username string) (bool, error) {
	return exists(ctx, db, `SELECT 1 FROM users WHERE username = ?`, username)
}

// EmailTaken reports whether another user already holds email.
func EmailTaken(ctx context.Context, db *sql.DB, email string) (bool, error) {
	return exists(ctx, db, `SELECT 1 FROM users WHERE email = ?`, email)
}

func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateUser writes the profile fields of u in a single statement.
// The password hash is left untouched.
func UpdateUser(ctx context.Context, db *sql.DB, u *User) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET firstname = ?, lastname = ?, username = ?, email = ?, image_file = ? WHERE id = ?`,
		u.Firstname, u.Lastname, u.Username, u.Email, u.ImageFile, u.ID)
	if err != nil {
		return uniqueViolation(err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
