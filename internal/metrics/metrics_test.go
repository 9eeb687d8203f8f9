package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentCountsByRoute(t *testing.T) {
	m := New()
	h := m.Instrument("GET /post/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/post/1", nil))
	}
	got := testutil.ToFloat64(m.requests.WithLabelValues("GET /post/{id}", "get", "404"))
	if got != 3 {
		t.Fatalf("requests counter = %v, want 3", got)
	}
}

func TestHandlerExposesAvatarCounter(t *testing.T) {
	m := New()
	m.AvatarUpload("ok")
	m.AvatarUpload("rejected")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics code %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `qa_avatar_uploads_total{result="rejected"} 1`) {
		t.Fatalf("avatar counter missing from exposition:\n%s", w.Body.String())
	}
}
