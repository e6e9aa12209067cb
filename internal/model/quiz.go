// File: internal/model/quiz.go
package model

import "time"

type Quiz struct {
	ID          int       `db:"id"`
	AuthorID    int       `db:"author_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	QuestionIDs []int     `db:"question_ids"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	Author *Author `db:"-"`
}
