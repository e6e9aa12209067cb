package store

import (
	"context"

	"quiz-api/internal/database"
	"quiz-api/internal/model"
)

const (
	quizColumns = `z.id, z.author_id, z.title, z.description, z.question_ids, z.created_at, z.updated_at`
	quizSelect  = `SELECT ` + quizColumns + `, u.username, u.email
		 FROM quizzes z LEFT JOIN users u ON u.id = z.author_id`
)

func quizFields(z *model.Quiz) []any {
	return []any{
		&z.ID,
		&z.AuthorID,
		&z.Title,
		&z.Description,
		&z.QuestionIDs,
		&z.CreatedAt,
		&z.UpdatedAt,
	}
}

func scanQuizWithAuthor(row scanner) (*model.Quiz, error) {
	z := &model.Quiz{}
	var username, email *string
	if err := row.Scan(append(quizFields(z), &username, &email)...); err != nil {
		return nil, err
	}
	z.QuestionIDs = nonNilInts(z.QuestionIDs)
	z.Author = expandAuthor(z.AuthorID, username, email)
	return z, nil
}

func GetQuizByID(ctx context.Context, db database.DB, id int) (*model.Quiz, error) {
	row := db.QueryRow(ctx, quizSelect+` WHERE z.id = $1`, id)
	z, err := scanQuizWithAuthor(row)
	if err != nil {
		return nil, wrap("GetQuizByID", err)
	}
	return z, nil
}

func ListQuizzes(ctx context.Context, db database.DB) ([]model.Quiz, error) {
	rows, err := db.Query(ctx, quizSelect+` ORDER BY z.created_at DESC, z.id DESC`)
	if err != nil {
		return nil, wrap("ListQuizzes", err)
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		z, err := scanQuizWithAuthor(rows)
		if err != nil {
			return nil, wrap("ListQuizzes", err)
		}
		quizzes = append(quizzes, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListQuizzes", err)
	}
	return quizzes, nil
}

func CreateQuiz(ctx context.Context, db database.DB, z *model.Quiz) (*model.Quiz, error) {
	z.QuestionIDs = nonNilInts(z.QuestionIDs)
	row := db.QueryRow(ctx,
		`INSERT INTO quizzes (author_id, title, description, question_ids)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		z.AuthorID,
		z.Title,
		z.Description,
		z.QuestionIDs,
	)
	if err := row.Scan(&z.ID, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return nil, wrap("CreateQuiz", err)
	}
	return z, nil
}

func UpdateQuiz(ctx context.Context, db database.DB, z *model.Quiz) error {
	z.QuestionIDs = nonNilInts(z.QuestionIDs)
	row := db.QueryRow(ctx,
		`UPDATE quizzes
		 SET title = $1, description = $2, question_ids = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		z.Title,
		z.Description,
		z.QuestionIDs,
		z.ID,
	)
	if err := row.Scan(&z.UpdatedAt); err != nil {
		return wrap("UpdateQuiz", err)
	}
	return nil
}

func DeleteQuiz(ctx context.Context, db database.DB, id int) (*model.Quiz, error) {
	z := &model.Quiz{}
	row := db.QueryRow(ctx,
		`DELETE FROM quizzes z WHERE z.id = $1 RETURNING `+quizColumns,
		id,
	)
	if err := row.Scan(quizFields(z)...); err != nil {
		return nil, wrap("DeleteQuiz", err)
	}
	z.QuestionIDs = nonNilInts(z.QuestionIDs)
	return z, nil
}
