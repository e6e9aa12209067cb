// File: internal/model/question.go
package model

import "time"

type Question struct {
	ID                 int       `db:"id"`
	AuthorID           int       `db:"author_id"`
	Text               string    `db:"text"`
	Options            []string  `db:"options"`
	Keywords           []string  `db:"keywords"`
	CorrectAnswerIndex int       `db:"correct_answer_index"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`

	// Author 由查詢時 LEFT JOIN 填入；作者已刪除時為 nil
	Author *Author `db:"-"`
}

// AnswerInRange 檢查正確答案索引是否落在選項範圍內
func (q *Question) AnswerInRange() bool {
	return AnswerIndexValid(q.CorrectAnswerIndex, len(q.Options))
}

func AnswerIndexValid(index, optionCount int) bool {
	return index >= 0 && index < optionCount
}
