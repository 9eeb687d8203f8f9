package models

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func CreateSession(ctx context.Context, db *sql.DB, s *Session) error {
	_, err := db.ExecContext(ctx, `INSERT INTO sessions (id, user_id, remember, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.Remember, s.ExpiresAt.UTC())
	return err
}

func GetSession(ctx context.Context, db *sql.DB, id string) (*Session, error) {
	row := db.QueryRowContext(ctx, `SELECT id, user_id, remember, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id)
	var s Session
	var revoked sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.Remember, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

func RevokeSession(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND revoked_at IS NULL`, id)
	return err
}

// DeleteExpiredSessions removes revoked sessions and sessions that expired
// before now, returning how many rows were purged.
func DeleteExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE revoked_at IS NOT NULL OR expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
