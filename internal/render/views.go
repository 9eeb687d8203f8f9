package render

import (
	"github.com/Bevanwhite/QuestionandAnswer1/internal/forms"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/session"
)

// Page is embedded in every view model and feeds the layout.
type Page struct {
	Title   string
	User    *models.User
	Flashes []session.Flash
}

type HomeView struct {
	Page
	Posts []models.Post
}

type UserPostsView struct {
	Page
	Author *models.User
	Posts  []models.Post
}

type PostView struct {
	Page
	Post    *models.Post
	CanEdit bool
}

// FormView backs every create/update form page.
type FormView struct {
	Page
	Legend string
	Action string
	Form   any
	Errors forms.Errors
}

type AccountView struct {
	Page
	ImageURL string
	Form     forms.AccountForm
	Errors   forms.Errors
	Accept   string
}

type WritingListView struct {
	Page
	Papers []models.Writingpaper
}

type WritingView struct {
	Page
	Paper *models.Writingpaper
}

type QuestionsView struct {
	Page
	Heading   string
	Questions []models.Questionpaper
}

type QuestionView struct {
	Page
	Paper *models.Questionpaper
}

type ErrorView struct {
	Page
	Status  int
	Message string
}
