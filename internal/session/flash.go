package session

import (
	"encoding/gob"
	"net/http"
)

const flashSessionName = "flash"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// AddFlash queues a notice for the next page this client renders.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	// A tampered or stale cookie yields a fresh session alongside the error.
	sess, _ := m.flashes.Get(r, flashSessionName)
	sess.AddFlash(Flash{Category: category, Message: message})
	return sess.Save(r, w)
}

// Flashes drains the queued notices.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess, _ := m.flashes.Get(r, flashSessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out, sess.Save(r, w)
}
