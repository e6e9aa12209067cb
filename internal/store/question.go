package store

import (
	"context"

	"quiz-api/internal/database"
	"quiz-api/internal/model"
)

const (
	questionColumns = `q.id, q.author_id, q.text, q.options, q.keywords, q.correct_answer_index, q.created_at, q.updated_at`
	// 作者以 LEFT JOIN 展開，作者已刪除時 username/email 為 NULL
	questionSelect = `SELECT ` + questionColumns + `, u.username, u.email
		 FROM questions q LEFT JOIN users u ON u.id = q.author_id`
)

func questionFields(q *model.Question) []any {
	return []any{
		&q.ID,
		&q.AuthorID,
		&q.Text,
		&q.Options,
		&q.Keywords,
		&q.CorrectAnswerIndex,
		&q.CreatedAt,
		&q.UpdatedAt,
	}
}

func scanQuestionWithAuthor(row scanner) (*model.Question, error) {
	q := &model.Question{}
	var username, email *string
	if err := row.Scan(append(questionFields(q), &username, &email)...); err != nil {
		return nil, err
	}
	q.Author = expandAuthor(q.AuthorID, username, email)
	return q, nil
}

func expandAuthor(id int, username, email *string) *model.Author {
	if username == nil || email == nil {
		return nil
	}
	return &model.Author{ID: id, Username: *username, Email: *email}
}

func GetQuestionByID(ctx context.Context, db database.DB, id int) (*model.Question, error) {
	row := db.QueryRow(ctx, questionSelect+` WHERE q.id = $1`, id)
	q, err := scanQuestionWithAuthor(row)
	if err != nil {
		return nil, wrap("GetQuestionByID", err)
	}
	return q, nil
}

func ListQuestions(ctx context.Context, db database.DB) ([]model.Question, error) {
	return queryQuestions(ctx, db, "ListQuestions",
		questionSelect+` ORDER BY q.created_at DESC, q.id DESC`)
}

// ListQuestionsByIDs 回傳存在的題目，順序不保證；重複 id 只回傳一次
func ListQuestionsByIDs(ctx context.Context, db database.DB, ids []int) ([]model.Question, error) {
	if len(ids) == 0 {
		return []model.Question{}, nil
	}
	return queryQuestions(ctx, db, "ListQuestionsByIDs",
		questionSelect+` WHERE q.id = ANY($1)`, ids)
}

func queryQuestions(ctx context.Context, db database.DB, op, sql string, args ...any) ([]model.Question, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestionWithAuthor(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return questions, nil
}

func CreateQuestion(ctx context.Context, db database.DB, q *model.Question) (*model.Question, error) {
	q.Keywords = nonNilStrings(q.Keywords)
	row := db.QueryRow(ctx,
		`INSERT INTO questions (author_id, text, options, keywords, correct_answer_index)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		q.AuthorID,
		q.Text,
		q.Options,
		q.Keywords,
		q.CorrectAnswerIndex,
	)
	if err := row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, wrap("CreateQuestion", err)
	}
	return q, nil
}

// UpdateQuestion 覆寫可編輯欄位；author_id 不可變更
func UpdateQuestion(ctx context.Context, db database.DB, q *model.Question) error {
	q.Keywords = nonNilStrings(q.Keywords)
	row := db.QueryRow(ctx,
		`UPDATE questions
		 SET text = $1, options = $2, keywords = $3, correct_answer_index = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		q.Text,
		q.Options,
		q.Keywords,
		q.CorrectAnswerIndex,
		q.ID,
	)
	if err := row.Scan(&q.UpdatedAt); err != nil {
		return wrap("UpdateQuestion", err)
	}
	return nil
}

func DeleteQuestion(ctx context.Context, db database.DB, id int) (*model.Question, error) {
	q := &model.Question{}
	row := db.QueryRow(ctx,
		`DELETE FROM questions q WHERE q.id = $1 RETURNING `+questionColumns,
		id,
	)
	if err := row.Scan(questionFields(q)...); err != nil {
		return nil, wrap("DeleteQuestion", err)
	}
	return q, nil
}
