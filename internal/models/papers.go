package models

import (
	"context"
	"database/sql"
	"errors"
)

const writingpaperSelect = `SELECT w.id, w.user_id, w.title, w.task01, w.task01_img, w.task02, w.task02_img, w.created_at, u.username
	FROM writingpapers w JOIN users u ON u.id = w.user_id`

func scanWritingpaper(row scanner) (*Writingpaper, error) {
	var w Writingpaper
	err := row.Scan(&w.ID, &w.UserID, &w.Title, &w.Task01, &w.Task01Img, &w.Task02, &w.Task02Img, &w.CreatedAt, &w.CreatorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWritingpaper inserts w owned by w.UserID and sets its ID.
func CreateWritingpaper(ctx context.Context, db *sql.DB, w *Writingpaper) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO writingpapers (user_id, title, task01, task01_img, task02, task02_img) VALUES (?, ?, ?, ?, ?, ?)`,
		w.UserID, w.Title, w.Task01, w.Task01Img, w.Task02, w.Task02Img)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = int(id)
	return nil
}

func GetWritingpaper(ctx context.Context, db *sql.DB, id int) (*Writingpaper, error) {
	return scanWritingpaper(db.QueryRowContext(ctx, writingpaperSelect+` WHERE w.id = ?`, id))
}

func ListWritingpapers(ctx context.Context, db *sql.DB) ([]Writingpaper, error) {
	rows, err := db.QueryContext(ctx, writingpaperSelect+` ORDER BY w.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var papers []Writingpaper
	for rows.Next() {
		w, err := scanWritingpaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *w)
	}
	return papers, rows.Err()
}

const questionpaperSelect = `SELECT q.id, q.user_id, q.title, q.questions, q.duration, q.questiontype, q.created_at, u.username
	FROM questionpapers q JOIN users u ON u.id = q.user_id`

func scanQuestionpaper(row scanner) (*Questionpaper, error) {
	var q Questionpaper
	err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Questions, &q.Duration, &q.QuestionType, &q.CreatedAt, &q.CreatorName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestionpaper inserts q owned by q.UserID and sets its ID.
func CreateQuestionpaper(ctx context.Context, db *sql.DB, q *Questionpaper) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO questionpapers (user_id, title, questions, duration, questiontype) VALUES (?, ?, ?, ?, ?)`,
		q.UserID, q.Title, q.Questions, q.Duration, q.QuestionType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = int(id)
	return nil
}

func GetQuestionpaper(ctx context.Context, db *sql.DB, id int) (*Questionpaper, error) {
	return scanQuestionpaper(db.QueryRowContext(ctx, questionpaperSelect+` WHERE q.id = ?`, id))
}

func ListQuestionpapers(ctx context.Context, db *sql.DB) ([]Questionpaper, error) {
	return queryQuestionpapers(ctx, db, questionpaperSelect+` ORDER BY q.id`)
}

// ListQuestionpapersByType returns the papers whose questiontype ends with
// suffix. The comparison is case-sensitive; an empty suffix matches every row.
func ListQuestionpapersByType(ctx context.Context, db *sql.DB, suffix string) ([]Questionpaper, error) {
	if suffix == "" {
		return ListQuestionpapers(ctx, db)
	}
	return queryQuestionpapers(ctx, db,
		questionpaperSelect+` WHERE length(q.questiontype) >= length(?) AND substr(q.questiontype, -length(?)) = ? ORDER BY q.id`,
		suffix, suffix, suffix)
}

func queryQuestionpapers(ctx context.Context, db *sql.DB, query string, args ...any) ([]Questionpaper, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var papers []Questionpaper
	for rows.Next() {
		q, err := scanQuestionpaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *q)
	}
	return papers, rows.Err()
}
