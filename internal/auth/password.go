// Package auth hashes and verifies account passwords.
package auth

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword returns a bcrypt hash of plain with a fresh salt embedded.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether candidate matches hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// Authenticate returns the user owning email if password matches. An
// unknown email and a wrong password both yield models.ErrInvalidCredentials.
func Authenticate(ctx context.Context, db *sql.DB, email, password string) (*models.User, error) {
	u, err := models.GetUserByEmail(ctx, db, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, models.ErrInvalidCredentials
	}
	return u, nil
}
