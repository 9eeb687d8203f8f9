package models

import (
	"context"
	"database/sql"
	"errors"
)

const postSelect = `SELECT p.id, p.user_id, p.title, p.content, p.date_posted, u.username, u.image_file
	FROM posts p JOIN users u ON u.id = p.user_id`

func scanPost(row scanner) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.DatePosted, &p.AuthorName, &p.AuthorImage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost inserts a post owned by userID and returns its id.
func CreatePost(ctx context.Context, db *sql.DB, userID int, title, content string) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO posts (user_id, title, content) VALUES (?, ?, ?)`, userID, title, content)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetPost(ctx context.Context, db *sql.DB, id int) (*Post, error) {
	return scanPost(db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
}

func ListPosts(ctx context.Context, db *sql.DB) ([]Post, error) {
	return queryPosts(ctx, db, postSelect+` ORDER BY p.id`)
}

// ListPostsByUser returns the posts authored by userID, newest first.
func ListPostsByUser(ctx context.Context, db *sql.DB, userID int) ([]Post, error) {
	return queryPosts(ctx, db, postSelect+` WHERE p.user_id = ? ORDER BY p.date_posted DESC, p.id DESC`, userID)
}

func queryPosts(ctx context.Context, db *sql.DB, query string, args ...any) ([]Post, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// UpdatePost replaces title and content. The author never changes.
func UpdatePost(ctx context.Context, db *sql.DB, id int, title, content string) error {
	res, err := db.ExecContext(ctx, `UPDATE posts SET title = ?, content = ? WHERE id = ?`, title, content, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func DeletePost(ctx context.Context, db *sql.DB, id int) error {
	res, err := db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
