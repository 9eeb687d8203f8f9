package server

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/forms"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/render"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/session"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := models.ListPosts(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home", render.HomeView{Page: s.page(w, r, ""), Posts: posts})
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	view := render.FormView{Legend: "New Post", Action: "/post/new"}
	var form forms.PostForm
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		view.Errors = forms.Parse(&form, r.PostForm)
		if view.Errors.Valid() {
			id, err := models.CreatePost(r.Context(), s.DB, user.ID, form.Title, form.Content)
			if err != nil {
				s.serverError(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int64("post_id", id).Msg("post created")
			s.flash(w, r, "success", "Your post has been created!")
			s.redirect(w, r, "/home")
			return
		}
	}
	view.Form = form
	view.Page = s.page(w, r, "New Post")
	s.render(w, r, http.StatusOK, "create_post", view)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	post, err := models.GetPost(r.Context(), s.DB, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "post", render.PostView{
		Page:    s.page(w, r, post.Title),
		Post:    post,
		CanEdit: post.OwnedBy(session.UserFrom(r.Context())),
	})
}

// ownedPost loads the post named by the path and checks that user wrote it.
func (s *Server) ownedPost(r *http.Request, user *models.User) (*models.Post, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	post, err := models.GetPost(r.Context(), s.DB, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(user) {
		return nil, errForbidden
	}
	return post, nil
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := s.ownedPost(r, user)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	target := "/post/" + strconv.Itoa(post.ID)
	view := render.FormView{Legend: "Update Post", Action: target + "/update"}
	form := forms.PostForm{Title: post.Title, Content: post.Content}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		form = forms.PostForm{}
		view.Errors = forms.Parse(&form, r.PostForm)
		if view.Errors.Valid() {
			if err := models.UpdatePost(r.Context(), s.DB, post.ID, form.Title, form.Content); err != nil {
				s.respondErr(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int("post_id", post.ID).Msg("post updated")
			s.flash(w, r, "success", "Your post has been updated!")
			s.redirect(w, r, target)
			return
		}
	}
	view.Form = form
	view.Page = s.page(w, r, "Update Post")
	s.render(w, r, http.StatusOK, "create_post", view)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := s.ownedPost(r, user)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := models.DeletePost(r.Context(), s.DB, post.ID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int("post_id", post.ID).Msg("post deleted")
	s.flash(w, r, "success", "Your post has been deleted!")
	s.redirect(w, r, "/home")
}
