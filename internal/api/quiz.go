// File: internal/api/quiz.go
package api

import (
	"time"

	"quiz-api/internal/model"
)

// swagger:model api.CreateQuizRequest
type CreateQuizRequest struct {
	Title       string `json:"title" validate:"required" example:"Arithmetic"`
	Description string `json:"description" example:"Warm-up questions"`
	Questions   []int  `json:"questions" validate:"dive,min=1,max=2147483647" example:"1,2"`
}

// swagger:model api.UpdateQuizRequest
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty" example:"Arithmetic II"`
	Description *string `json:"description,omitempty" example:"Harder questions"`
	Questions   *[]int  `json:"questions,omitempty" validate:"omitempty,dive,min=1,max=2147483647" example:"2,3"`
}

// QuizResponse 列表與建立時只展開作者，questions 為 ID
// swagger:model api.QuizResponse
type QuizResponse struct {
	ID          int             `json:"id" example:"1"`
	Title       string          `json:"title" example:"Arithmetic"`
	Description string          `json:"description" example:"Warm-up questions"`
	Author      *AuthorResponse `json:"author"`
	Questions   []int           `json:"questions" example:"1,2"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// QuizDetailResponse 單筆查詢時連同題目完整展開
// swagger:model api.QuizDetailResponse
type QuizDetailResponse struct {
	ID          int                `json:"id" example:"1"`
	Title       string             `json:"title" example:"Arithmetic"`
	Description string             `json:"description" example:"Warm-up questions"`
	Author      *AuthorResponse    `json:"author"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func NewQuizResponse(z *model.Quiz) QuizResponse {
	return QuizResponse{
		ID:          z.ID,
		Title:       z.Title,
		Description: z.Description,
		Author:      newAuthorResponse(z.Author),
		Questions:   z.QuestionIDs,
		CreatedAt:   z.CreatedAt,
		UpdatedAt:   z.UpdatedAt,
	}
}

func NewQuizResponses(quizzes []model.Quiz) []QuizResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, NewQuizResponse(&quizzes[i]))
	}
	return out
}

// NewQuizDetailResponse 依測驗中的題目順序展開；找不到的題目略過，重複的 ID 重複輸出
func NewQuizDetailResponse(z *model.Quiz, questions []model.Question) QuizDetailResponse {
	byID := make(map[int]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	expanded := make([]QuestionResponse, 0, len(z.QuestionIDs))
	for _, id := range z.QuestionIDs {
		if q, ok := byID[id]; ok {
			expanded = append(expanded, NewQuestionResponse(q))
		}
	}
	return QuizDetailResponse{
		ID:          z.ID,
		Title:       z.Title,
		Description: z.Description,
		Author:      newAuthorResponse(z.Author),
		Questions:   expanded,
		CreatedAt:   z.CreatedAt,
		UpdatedAt:   z.UpdatedAt,
	}
}
