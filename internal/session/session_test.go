package session

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/db"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *sql.DB, *models.User) {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	u := &models.User{Firstname: "Al", Lastname: "Ice", Username: "alice", Email: "a@b.com", PasswordHash: "x"}
	if err := models.CreateUser(context.Background(), database, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	m := NewManager(database, Options{
		CookieName:  "session_id",
		Secret:      []byte("test-secret"),
		SessionTTL:  time.Hour,
		RememberTTL: 24 * time.Hour,
	})
	return m, database, u
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginCurrentLogout(t *testing.T) {
	m, _, u := newTestManager(t)

	w := httptest.NewRecorder()
	if err := m.Login(w, httptest.NewRequest(http.MethodPost, "/login", nil), u.ID, false); err != nil {
		t.Fatalf("login: %v", err)
	}
	cookie := findCookie(w.Result().Cookies(), "session_id")
	if cookie == nil {
		t.Fatalf("no session cookie set")
	}
	if !cookie.Expires.IsZero() || cookie.MaxAge != 0 {
		t.Fatalf("non-remembered login must set a browser-session cookie: %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got, err := m.Current(req)
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("current = %+v, %v", got, err)
	}

	w = httptest.NewRecorder()
	if err := m.Logout(w, req); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got, _ := m.Current(req); got != nil {
		t.Fatalf("expected no identity after logout")
	}
}

func TestRememberedLoginPersistsCookie(t *testing.T) {
	m, _, u := newTestManager(t)
	w := httptest.NewRecorder()
	if err := m.Login(w, httptest.NewRequest(http.MethodPost, "/login", nil), u.ID, true); err != nil {
		t.Fatalf("login: %v", err)
	}
	cookie := findCookie(w.Result().Cookies(), "session_id")
	if cookie == nil || cookie.MaxAge <= 0 {
		t.Fatalf("remembered login must set a persistent cookie: %+v", cookie)
	}
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	m, _, u := newTestManager(t)
	w := httptest.NewRecorder()
	if err := m.Login(w, httptest.NewRequest(http.MethodPost, "/login", nil), u.ID, false); err != nil {
		t.Fatalf("login: %v", err)
	}
	cookie := findCookie(w.Result().Cookies(), "session_id")

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if got, err := m.Current(req); got != nil || err != nil {
		t.Fatalf("expired session resolved to %+v, %v", got, err)
	}
	n, err := m.PurgeExpired(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

func TestUnknownCookieIsAnonymous(t *testing.T) {
	m, _, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bogus"})
	if got, err := m.Current(req); got != nil || err != nil {
		t.Fatalf("unknown cookie resolved to %+v, %v", got, err)
	}
}

func TestFlashesAreOneShot(t *testing.T) {
	m, _, _ := newTestManager(t)

	w := httptest.NewRecorder()
	if err := m.AddFlash(w, httptest.NewRequest(http.MethodPost, "/post/new", nil), "success", "Your post has been created!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}
	cookie := findCookie(w.Result().Cookies(), flashSessionName)
	if cookie == nil {
		t.Fatalf("no flash cookie set")
	}

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	flashes, err := m.Flashes(w, req)
	if err != nil {
		t.Fatalf("flashes: %v", err)
	}
	if len(flashes) != 1 || flashes[0].Category != "success" {
		t.Fatalf("flashes = %+v", flashes)
	}

	drained := findCookie(w.Result().Cookies(), flashSessionName)
	req = httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(drained)
	flashes, _ = m.Flashes(httptest.NewRecorder(), req)
	if len(flashes) != 0 {
		t.Fatalf("flashes must be consumed once, got %+v", flashes)
	}
}

func TestContextIdentity(t *testing.T) {
	if UserFrom(context.Background()) != nil {
		t.Fatalf("expected no identity on a bare context")
	}
	u := &models.User{ID: 7}
	if got := UserFrom(WithUser(context.Background(), u)); got != u {
		t.Fatalf("identity not carried through context")
	}
}
