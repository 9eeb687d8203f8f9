// Package session binds authenticated users to requests.
//
// Login sessions live in the sessions table and are referenced by an opaque
// uuid cookie. The resolved user travels through the request context; there
// is no process-wide "current user".
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
)

type Options struct {
	CookieName  string
	Secret      []byte
	Secure      bool
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

type Manager struct {
	db          *sql.DB
	cookieName  string
	secure      bool
	sessionTTL  time.Duration
	rememberTTL time.Duration
	flashes     sessions.Store
	now         func() time.Time
}

func NewManager(db *sql.DB, opts Options) *Manager {
	store := sessions.NewCookieStore(opts.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		db:          db,
		cookieName:  opts.CookieName,
		secure:      opts.Secure,
		sessionTTL:  opts.SessionTTL,
		rememberTTL: opts.RememberTTL,
		flashes:     store,
		now:         time.Now,
	}
}

// Login starts a session for userID. A remembered session gets a persistent
// cookie; otherwise the cookie ends with the browser session and the row
// expires after SessionTTL.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int, remember bool) error {
	if old, err := r.Cookie(m.cookieName); err == nil {
		if err := models.RevokeSession(r.Context(), m.db, old.Value); err != nil {
			return fmt.Errorf("revoke previous session: %w", err)
		}
	}

	ttl := m.sessionTTL
	if remember {
		ttl = m.rememberTTL
	}
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Remember:  remember,
		ExpiresAt: m.now().Add(ttl),
	}
	if err := models.CreateSession(r.Context(), m.db, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = s.ExpiresAt
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Logout revokes the request's session, if any, and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: m.cookieName, Path: "/", MaxAge: -1, HttpOnly: true, Secure: m.secure})
	return models.RevokeSession(r.Context(), m.db, cookie.Value)
}

// Current resolves the user bound to the request cookie. It returns nil
// without error when the request carries no active session.
func (m *Manager) Current(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, nil
	}
	sess, err := models.GetSession(r.Context(), m.db, cookie.Value)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Active(m.now()) {
		return nil, nil
	}
	u, err := models.GetUserByID(r.Context(), m.db, sess.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

// PurgeExpired deletes revoked and expired session rows.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return models.DeleteExpiredSessions(ctx, m.db, m.now())
}
