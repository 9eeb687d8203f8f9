package forms

import "context"

// Lookup answers the uniqueness questions the account forms ask.
type Lookup interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

const (
	MsgUsernameTaken = "That username is taken. Please choose a different one."
	MsgEmailTaken    = "That email is taken. Please choose a different one."
)

type RegistrationForm struct {
	Firstname       string `schema:"firstname" validate:"required,min=2,max=20"`
	Lastname        string `schema:"lastname" validate:"required,min=2,max=20"`
	Username        string `schema:"username" validate:"required,min=2,max=20"`
	Email           string `schema:"email" validate:"required,email"`
	Password        string `schema:"password" validate:"required,maxbytes=72" trim:"false"`
	ConfirmPassword string `schema:"confirm_password" validate:"required,eqfield=Password" trim:"false"`
}

// CheckUnique adds errors for a username or email that already exists.
func (f *RegistrationForm) CheckUnique(ctx context.Context, lookup Lookup, errs Errors) error {
	return checkUnique(ctx, lookup, errs, f.Username, f.Email)
}

type LoginForm struct {
	Email    string `schema:"email" validate:"required,email"`
	Password string `schema:"password" validate:"required" trim:"false"`
	Remember bool   `schema:"remember"`
}

type AccountForm struct {
	Firstname string `schema:"firstname" validate:"required,min=2,max=20"`
	Lastname  string `schema:"lastname" validate:"required,min=2,max=20"`
	Username  string `schema:"username" validate:"required,min=2,max=20"`
	Email     string `schema:"email" validate:"required,email"`
}

// CheckUnique validates uniqueness only for the values that differ from the
// user's current username and email.
func (f *AccountForm) CheckUnique(ctx context.Context, lookup Lookup, errs Errors, currentUsername, currentEmail string) error {
	username, email := f.Username, f.Email
	if username == currentUsername {
		username = ""
	}
	if email == currentEmail {
		email = ""
	}
	return checkUnique(ctx, lookup, errs, username, email)
}

func checkUnique(ctx context.Context, lookup Lookup, errs Errors, username, email string) error {
	if _, bad := errs["username"]; username != "" && !bad {
		taken, err := lookup.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", MsgUsernameTaken)
		}
	}
	if _, bad := errs["email"]; email != "" && !bad {
		taken, err := lookup.EmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", MsgEmailTaken)
		}
	}
	return nil
}

type PostForm struct {
	Title   string `schema:"title" validate:"required,max=100"`
	Content string `schema:"content" validate:"required"`
}

type WritingpaperForm struct {
	Title     string `schema:"title" validate:"required,max=100"`
	Task01    string `schema:"task01" validate:"required"`
	Task01Img string `schema:"task01_img" validate:"required,max=200"`
	Task02    string `schema:"task02" validate:"required"`
	Task02Img string `schema:"task02_img" validate:"required,max=200"`
}

type QuestionpaperForm struct {
	Title        string `schema:"title" validate:"required,max=100"`
	Question     string `schema:"question" validate:"required"`
	Duration     int    `schema:"duration" validate:"required,min=1,max=600"`
	QuestionType string `schema:"questionpapertype" validate:"required,max=50"`
}
