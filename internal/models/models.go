package models

import "time"

// DefaultImageFile is the avatar every user starts with.
const DefaultImageFile = "default.jpg"

type User struct {
	ID           int
	Firstname    string
	Lastname     string
	Username     string
	Email        string
	PasswordHash string
	ImageFile    string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type Post struct {
	ID          int
	UserID      int
	Title       string
	Content     string
	DatePosted  time.Time
	AuthorName  string
	AuthorImage string
}

// OwnedBy reports whether u authored the post.
func (p *Post) OwnedBy(u *User) bool {
	return u != nil && p.UserID == u.ID
}

type Writingpaper struct {
	ID          int
	UserID      int
	Title       string
	Task01      string
	Task01Img   string
	Task02      string
	Task02Img   string
	CreatedAt   time.Time
	CreatorName string
}

type Questionpaper struct {
	ID           int
	UserID       int
	Title        string
	Questions    string
	Duration     int
	QuestionType string
	CreatedAt    time.Time
	CreatorName  string
}
