// File: internal/api/question.go
package api

import (
	"time"

	"quiz-api/internal/model"
)

// swagger:model api.CreateQuestionRequest
type CreateQuestionRequest struct {
	Text               string   `json:"text" validate:"required" example:"What is 2 + 2?"`
	Options            []string `json:"options" validate:"required,min=1" example:"3,4,5"`
	Keywords           []string `json:"keywords" example:"math"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" validate:"required" example:"1"`
}

// UpdateQuestionRequest 部分更新，nil 代表未提供
// swagger:model api.UpdateQuestionRequest
type UpdateQuestionRequest struct {
	Text               *string   `json:"text,omitempty" example:"What is 3 + 3?"`
	Options            *[]string `json:"options,omitempty" example:"5,6,7"`
	Keywords           *[]string `json:"keywords,omitempty" example:"math"`
	CorrectAnswerIndex *int      `json:"correctAnswerIndex,omitempty" example:"1"`
}

// AuthorResponse 展開後的作者
// swagger:model api.AuthorResponse
type AuthorResponse struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// swagger:model api.QuestionResponse
type QuestionResponse struct {
	ID                 int             `json:"id" example:"1"`
	Text               string          `json:"text" example:"What is 2 + 2?"`
	Author             *AuthorResponse `json:"author"`
	Options            []string        `json:"options" example:"3,4,5"`
	Keywords           []string        `json:"keywords" example:"math"`
	CorrectAnswerIndex int             `json:"correctAnswerIndex" example:"1"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func newAuthorResponse(a *model.Author) *AuthorResponse {
	if a == nil {
		return nil
	}
	return &AuthorResponse{ID: a.ID, Username: a.Username, Email: a.Email}
}

func NewQuestionResponse(q *model.Question) QuestionResponse {
	return QuestionResponse{
		ID:                 q.ID,
		Text:               q.Text,
		Author:             newAuthorResponse(q.Author),
		Options:            q.Options,
		Keywords:           q.Keywords,
		CorrectAnswerIndex: q.CorrectAnswerIndex,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

func NewQuestionResponses(questions []model.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionResponse(&questions[i]))
	}
	return out
}
