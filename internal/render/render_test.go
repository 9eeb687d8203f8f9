package render

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/forms"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/session"
	"github.com/Bevanwhite/QuestionandAnswer1/web"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(web.Templates(), template.FuncMap{
		"avatar": func(name string) string { return "https://cdn.example.com/" + name },
	})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestEveryPageRenders(t *testing.T) {
	r := newTestRenderer(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	user := &models.User{ID: 1, Username: "alice", Email: "a@b.com", ImageFile: "default.jpg"}
	page := Page{Title: "T", User: user, Flashes: []session.Flash{{Category: "success", Message: "Saved!"}}}
	post := models.Post{ID: 3, UserID: 1, Title: "Hello", Content: "World\nagain", DatePosted: now, AuthorName: "alice", AuthorImage: "a.png"}
	wp := models.Writingpaper{ID: 2, Title: "WP", Task01: "t1", Task01Img: "i1", Task02: "t2", Task02Img: "i2", CreatedAt: now, CreatorName: "alice"}
	qp := models.Questionpaper{ID: 4, Title: "QP", Questions: "q", Duration: 40, QuestionType: "ielts_reading", CreatedAt: now, CreatorName: "alice"}

	views := map[string]any{
		"home":                 HomeView{Page: page, Posts: []models.Post{post}},
		"user_posts":           UserPostsView{Page: page, Author: user, Posts: []models.Post{post}},
		"about":                HomeView{Page: page},
		"speaking":             HomeView{Page: page},
		"register":             FormView{Page: page, Form: forms.RegistrationForm{Username: "alice"}, Errors: forms.Errors{"email": "Invalid email address."}},
		"login":                FormView{Page: page, Action: "/login?next=%2Faccount", Form: forms.LoginForm{Email: "a@b.com"}},
		"account":              AccountView{Page: page, ImageURL: "/static/profile_pics/default.jpg", Form: forms.AccountForm{Username: "alice"}},
		"create_post":          FormView{Page: page, Legend: "New Post", Action: "/post/new", Form: forms.PostForm{Title: "x"}},
		"post":                 PostView{Page: page, Post: &post, CanEdit: true},
		"writing":              WritingListView{Page: page, Papers: []models.Writingpaper{wp}},
		"create_writing":       FormView{Page: page, Legend: "Writing Paper", Action: "/writing/new", Form: forms.WritingpaperForm{}},
		"writing_paper":        WritingView{Page: page, Paper: &wp},
		"questions":            QuestionsView{Page: page, Heading: "Reading", Questions: []models.Questionpaper{qp}},
		"questionpaper":        QuestionView{Page: page, Paper: &qp},
		"create_questionpaper": FormView{Page: page, Legend: "New Question Paper", Action: "/questionpaper/new", Form: forms.QuestionpaperForm{Duration: 60}},
		"error":                ErrorView{Page: page, Status: 404, Message: "Not Found"},
	}
	for name, data := range views {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Execute(&buf, name, data); err != nil {
				t.Fatalf("execute: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, "Saved!") {
				t.Fatalf("flash missing from %s", name)
			}
			if !strings.Contains(out, `href="/logout"`) {
				t.Fatalf("authenticated nav missing from %s", name)
			}
		})
	}
}

func TestHomeShowsAuthorAvatar(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	view := HomeView{Posts: []models.Post{{ID: 1, Title: "Hello", AuthorName: "alice", AuthorImage: "a.png"}}}
	if err := r.Execute(&buf, "home", view); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"https://cdn.example.com/a.png", "Hello", `href="/login"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestExecuteUnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	if err := r.Execute(&buf, "missing", nil); err == nil {
		t.Fatalf("expected error for unknown page")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing may be written on failure")
	}
}

func TestHTMLSetsStatus(t *testing.T) {
	r := newTestRenderer(t)
	w := httptest.NewRecorder()
	if err := r.HTML(w, http.StatusNotFound, "error", ErrorView{Status: 404, Message: "Not Found"}); err != nil {
		t.Fatalf("html: %v", err)
	}
	if w.Code != http.StatusNotFound || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("code %d, content type %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestAvatarFuncRequired(t *testing.T) {
	if _, err := New(web.Templates(), nil); err == nil {
		t.Fatalf("expected parse error without an avatar func")
	}
}
