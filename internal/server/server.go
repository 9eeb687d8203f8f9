package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/avatar"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/config"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/logging"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/metrics"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/render"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/session"
	"github.com/Bevanwhite/QuestionandAnswer1/web"
)

var errForbidden = errors.New("forbidden")

type Server struct {
	DB *sql.DB

	tmpl      *render.Renderer
	sessions  *session.Manager
	avatars   *avatar.Ingestor
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	maxUpload int64

	handler http.Handler
}

func New(cfg *config.Config, db *sql.DB, avatars *avatar.Ingestor, logger zerolog.Logger) (*Server, error) {
	tmpl, err := render.New(web.Templates(), template.FuncMap{"avatar": avatars.URL})
	if err != nil {
		return nil, err
	}
	s := &Server{
		DB:   db,
		tmpl: tmpl,
		sessions: session.NewManager(db, session.Options{
			CookieName:  cfg.Session.CookieName,
			Secret:      []byte(cfg.Session.Secret),
			Secure:      cfg.Session.Secure,
			SessionTTL:  cfg.Session.TTL,
			RememberTTL: cfg.Session.RememberTTL,
		}),
		avatars:   avatars,
		metrics:   metrics.New(),
		logger:    logger.With().Str(logging.COMPONENT, "http").Logger(),
		maxUpload: cfg.Avatar.MaxUploadBytes,
	}
	s.handler = s.routes()
	return s, nil
}

// Prepare makes sure the default avatar exists and drops sessions that
// expired while the server was down.
func (s *Server) Prepare(ctx context.Context) error {
	if err := s.avatars.EnsurePlaceholder(ctx); err != nil {
		return err
	}
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("sessions", n).Msg("purged expired sessions")
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.Instrument(pattern, h))
	}

	handle("GET /{$}", s.handleHome)
	handle("GET /home", s.handleHome)
	handle("GET /about", s.handleStatic("about", "About"))
	handle("GET /speaking", s.handleStatic("speaking", "Speaking"))

	handle("GET /register", s.handleRegister)
	handle("POST /register", s.handleRegister)
	handle("GET /login", s.handleLogin)
	handle("POST /login", s.handleLogin)
	handle("GET /logout", s.handleLogout)
	handle("POST /logout", s.handleLogout)
	handle("GET /account", s.requireAuth(s.handleAccount))
	handle("POST /account", s.requireAuth(s.handleAccount))
	handle("GET /user/{username}", s.handleUserPosts)

	handle("GET /post/new", s.requireAuth(s.handleNewPost))
	handle("POST /post/new", s.requireAuth(s.handleNewPost))
	handle("GET /post/{id}", s.handlePost)
	handle("GET /post/{id}/update", s.requireAuth(s.handleUpdatePost))
	handle("POST /post/{id}/update", s.requireAuth(s.handleUpdatePost))
	handle("POST /post/{id}/delete", s.requireAuth(s.handleDeletePost))

	handle("GET /writing", s.handleWriting)
	handle("GET /writing/new", s.requireAuth(s.handleNewWriting))
	handle("POST /writing/new", s.requireAuth(s.handleNewWriting))
	handle("GET /writing/{id}", s.handleWritingpaper)
	handle("GET /listening", s.handleQuestions("listening", "Listening"))
	handle("GET /reading", s.handleQuestions("reading", "Reading"))
	handle("GET /questionpaper/new", s.requireAuth(s.handleNewQuestionpaper))
	handle("POST /questionpaper/new", s.requireAuth(s.handleNewQuestionpaper))
	handle("GET /questionpaper/{id}", s.handleQuestionpaper)

	handle("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	if local, ok := s.avatars.Storage().(interface{ Route() (string, http.Handler) }); ok {
		mux.Handle(local.Route())
	}
	mux.HandleFunc("/", s.notFound)

	var h http.Handler = s.identify(mux)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler(logging.REQUEST, "X-Request-Id")(h)
	return hlog.NewHandler(s.logger)(h)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// middleware

// identify resolves the session cookie once per request and stores the user
// in the request context.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.Current(r)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("resolve session")
		}
		if user != nil {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int(logging.USER, user.ID)
			})
			r = r.WithContext(session.WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.UserFrom(r.Context())
		if user == nil {
			s.flash(w, r, "info", "Please log in to access this page.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

// helpers

func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) render.Page {
	flashes, err := s.sessions.Flashes(w, r)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("read flashes")
	}
	return render.Page{Title: title, User: session.UserFrom(r.Context()), Flashes: flashes}
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	if err := s.sessions.AddFlash(w, r, category, message); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("store flash")
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.tmpl.HTML(w, status, name, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("render")
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error", render.ErrorView{
		Page:    s.page(w, r, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, http.StatusNotFound, "That page does not exist.")
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	s.fail(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// respondErr maps a lookup or authorization error onto an error page.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.notFound(w, r)
	case errors.Is(err, errForbidden):
		s.fail(w, r, http.StatusForbidden, "You are not allowed to do that.")
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Warn().Err(err).Msg("bad request")
	s.fail(w, r, http.StatusBadRequest, "The request could not be understood.")
}

// pathID parses the {id} wildcard. Anything that is not a positive integer
// cannot name a row and is reported as not found.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, models.ErrNotFound
	}
	return id, nil
}

// localPath reports whether next is a same-site path that is safe to
// redirect to after login.
func localPath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}

func (s *Server) handleStatic(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, name, render.HomeView{Page: s.page(w, r, title)})
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status, code := "ok", http.StatusOK
	if err := s.DB.PingContext(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check")
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
