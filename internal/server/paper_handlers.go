package server

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/forms"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/render"
)

// defaultDuration prefills the question paper form, in minutes.
const defaultDuration = 60

func (s *Server) handleWriting(w http.ResponseWriter, r *http.Request) {
	papers, err := models.ListWritingpapers(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "writing", render.WritingListView{Page: s.page(w, r, "Writing"), Papers: papers})
}

func (s *Server) handleNewWriting(w http.ResponseWriter, r *http.Request, user *models.User) {
	view := render.FormView{Legend: "Writing Paper", Action: "/writing/new"}
	var form forms.WritingpaperForm
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		view.Errors = forms.Parse(&form, r.PostForm)
		if view.Errors.Valid() {
			paper := &models.Writingpaper{
				UserID:    user.ID,
				Title:     form.Title,
				Task01:    form.Task01,
				Task01Img: form.Task01Img,
				Task02:    form.Task02,
				Task02Img: form.Task02Img,
			}
			if err := models.CreateWritingpaper(r.Context(), s.DB, paper); err != nil {
				s.serverError(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int("writingpaper_id", paper.ID).Msg("writing paper created")
			s.flash(w, r, "success", "Your writing paper has been created!")
			s.redirect(w, r, "/writing")
			return
		}
	}
	view.Form = form
	view.Page = s.page(w, r, "New Writing Paper")
	s.render(w, r, http.StatusOK, "create_writing", view)
}

func (s *Server) handleWritingpaper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	paper, err := models.GetWritingpaper(r.Context(), s.DB, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "writing_paper", render.WritingView{Page: s.page(w, r, paper.Title), Paper: paper})
}

// handleQuestions lists the question papers whose type ends with suffix.
func (s *Server) handleQuestions(suffix, heading string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		papers, err := models.ListQuestionpapersByType(r.Context(), s.DB, suffix)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, "questions", render.QuestionsView{
			Page:      s.page(w, r, heading),
			Heading:   heading,
			Questions: papers,
		})
	}
}

func (s *Server) handleNewQuestionpaper(w http.ResponseWriter, r *http.Request, user *models.User) {
	view := render.FormView{Legend: "Question Paper", Action: "/questionpaper/new"}
	form := forms.QuestionpaperForm{Duration: defaultDuration}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.badRequest(w, r, err)
			return
		}
		form = forms.QuestionpaperForm{}
		view.Errors = forms.Parse(&form, r.PostForm)
		if view.Errors.Valid() {
			paper := &models.Questionpaper{
				UserID:       user.ID,
				Title:        form.Title,
				Questions:    form.Question,
				Duration:     form.Duration,
				QuestionType: form.QuestionType,
			}
			if err := models.CreateQuestionpaper(r.Context(), s.DB, paper); err != nil {
				s.serverError(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int("questionpaper_id", paper.ID).Str("type", paper.QuestionType).Msg("question paper created")
			s.flash(w, r, "success", "Your question paper has been created!")
			s.redirect(w, r, "/writing")
			return
		}
	}
	view.Form = form
	view.Page = s.page(w, r, "New Question Paper")
	s.render(w, r, http.StatusOK, "create_questionpaper", view)
}

func (s *Server) handleQuestionpaper(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	paper, err := models.GetQuestionpaper(r.Context(), s.DB, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "questionpaper", render.QuestionView{Page: s.page(w, r, paper.Title), Paper: paper})
}
