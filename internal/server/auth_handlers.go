package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/auth"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/avatar"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/forms"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/logging"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/render"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/session"
)

// userLookup answers the form uniqueness checks from the users table.
type userLookup struct {
	db *sql.DB
}

func (l userLookup) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return models.UsernameTaken(ctx, l.db, username)
}

func (l userLookup) EmailTaken(ctx context.Context, email string) (bool, error) {
	return models.EmailTaken(ctx, l.db, email)
}

// duplicateField turns a unique violation that slipped past the form check
// into a field error. It reports false for any other error.
func duplicateField(err error, errs forms.Errors) bool {
	switch {
	case errors.Is(err, models.ErrDuplicateUsername):
		errs.Add("username", forms.MsgUsernameTaken)
	case errors.Is(err, models.ErrDuplicateEmail):
		errs.Add("email", forms.MsgEmailTaken)
	default:
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form forms.RegistrationForm
	var errs forms.Errors
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		errs = forms.Parse(&form, r.PostForm)
		if err := form.CheckUnique(r.Context(), userLookup{s.DB}, errs); err != nil {
			s.serverError(w, r, err)
			return
		}
		var hash string
		if errs.Valid() {
			var err error
			hash, err = auth.HashPassword(form.Password)
			if errors.Is(err, auth.ErrPasswordTooLong) {
				errs.Add("password", fmt.Sprintf("Field cannot be longer than %d bytes.", auth.MaxPasswordBytes))
			} else if err != nil {
				s.serverError(w, r, err)
				return
			}
		}
		if errs.Valid() {
			user := &models.User{
				Firstname:    form.Firstname,
				Lastname:     form.Lastname,
				Username:     form.Username,
				Email:        form.Email,
				PasswordHash: hash,
			}
			err := models.CreateUser(r.Context(), s.DB, user)
			if err == nil {
				hlog.FromRequest(r).Info().Int(logging.USER, user.ID).Msg("user registered")
				s.flash(w, r, "success", "Your account has been created! You are now able to log in")
				s.redirect(w, r, "/login")
				return
			}
			if !duplicateField(err, errs) {
				s.serverError(w, r, err)
				return
			}
		}
	}
	form.Password, form.ConfirmPassword = "", ""
	s.render(w, r, http.StatusOK, "register", render.FormView{
		Page:   s.page(w, r, "Register"),
		Legend: "Join Today",
		Action: "/register",
		Form:   form,
		Errors: errs,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	action := "/login"
	if localPath(next) {
		action += "?next=" + url.QueryEscape(next)
	}
	view := render.FormView{Legend: "Log In", Action: action}
	var form forms.LoginForm
	var failed bool

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		view.Errors = forms.Parse(&form, r.PostForm)
		if view.Errors.Valid() {
			user, err := auth.Authenticate(r.Context(), s.DB, form.Email, form.Password)
			switch {
			case errors.Is(err, models.ErrInvalidCredentials):
				hlog.FromRequest(r).Info().Err(err).Msg("login failed")
				failed = true
			case err != nil:
				s.serverError(w, r, err)
				return
			default:
				if err := s.sessions.Login(w, r, user.ID, form.Remember); err != nil {
					s.serverError(w, r, err)
					return
				}
				hlog.FromRequest(r).Info().Int(logging.USER, user.ID).Bool("remember", form.Remember).Msg("user logged in")
				target := "/home"
				if localPath(next) {
					target = next
				}
				s.redirect(w, r, target)
				return
			}
		}
	}

	form.Password = ""
	view.Form = form
	view.Page = s.page(w, r, "Login")
	if failed {
		view.Flashes = append(view.Flashes, session.Flash{Category: "danger", Message: "Login Unsuccessful. Please check email and password"})
	}
	s.render(w, r, http.StatusOK, "login", view)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.redirect(w, r, "/home")
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request, user *models.User) {
	view := render.AccountView{Accept: acceptAttr()}
	var notice *session.Flash

	switch r.Method {
	case http.MethodGet:
		view.Form = forms.AccountForm{
			Firstname: user.Firstname,
			Lastname:  user.Lastname,
			Username:  user.Username,
			Email:     user.Email,
		}
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		if err := r.ParseMultipartForm(s.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var tooLarge *http.MaxBytesError
			if !errors.As(err, &tooLarge) {
				s.badRequest(w, r, err)
				return
			}
			s.metrics.AvatarUpload("rejected")
			view.Errors = forms.Errors{"picture": "The picture is too large."}
			view.Form = forms.AccountForm{Firstname: user.Firstname, Lastname: user.Lastname, Username: user.Username, Email: user.Email}
			break
		}
		view.Errors = forms.Parse(&view.Form, r.PostForm)
		if err := view.Form.CheckUnique(r.Context(), userLookup{s.DB}, view.Errors, user.Username, user.Email); err != nil {
			s.serverError(w, r, err)
			return
		}

		file, header, err := r.FormFile("picture")
		switch {
		case err == nil:
			defer file.Close()
			if !avatar.Supported(header.Filename) {
				view.Errors.Add("picture", "File does not have an approved extension: "+extensionList())
				file = nil
			}
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		default:
			s.badRequest(w, r, err)
			return
		}
		if !view.Errors.Valid() {
			break
		}

		updated := *user
		updated.Firstname = view.Form.Firstname
		updated.Lastname = view.Form.Lastname
		updated.Username = view.Form.Username
		updated.Email = view.Form.Email
		if file != nil {
			name, err := s.avatars.Ingest(r.Context(), header.Filename, file)
			switch {
			case errors.Is(err, avatar.ErrUnsupportedImage):
				s.metrics.AvatarUpload("rejected")
				hlog.FromRequest(r).Info().Err(err).Str("filename", header.Filename).Msg("avatar rejected")
				notice = &session.Flash{Category: "danger", Message: "The uploaded picture could not be read as an image."}
			case err != nil:
				s.metrics.AvatarUpload("error")
				s.serverError(w, r, err)
				return
			default:
				s.metrics.AvatarUpload("ok")
				updated.ImageFile = name
			}
		}
		if notice != nil {
			break
		}

		err = models.UpdateUser(r.Context(), s.DB, &updated)
		if err == nil {
			hlog.FromRequest(r).Info().Str("image", updated.ImageFile).Msg("account updated")
			s.flash(w, r, "success", "Your account has been updated!")
			s.redirect(w, r, "/account")
			return
		}
		if !duplicateField(err, view.Errors) {
			s.serverError(w, r, err)
			return
		}
	}

	view.Page = s.page(w, r, "Account")
	if notice != nil {
		view.Flashes = append(view.Flashes, *notice)
	}
	view.ImageURL = s.avatars.URL(user.ImageFile)
	s.render(w, r, http.StatusOK, "account", view)
}

func acceptAttr() string {
	return "." + strings.Join(avatar.Extensions, ",.")
}

func extensionList() string {
	return strings.Join(avatar.Extensions, ", ")
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	author, err := models.GetUserByUsername(r.Context(), s.DB, r.PathValue("username"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	posts, err := models.ListPostsByUser(r.Context(), s.DB, author.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "user_posts", render.UserPostsView{
		Page:   s.page(w, r, author.Username),
		Author: author,
		Posts:  posts,
	})
}
