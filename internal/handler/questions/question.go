package questions

import (
	"errors"
	"net/http"

	"quiz-api/internal/api"
	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/handler"
	"quiz-api/internal/middleware"
	"quiz-api/internal/model"
	"quiz-api/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	listQuestions   = store.ListQuestions
	getQuestionByID = store.GetQuestionByID
	createQuestion  = store.CreateQuestion
	updateQuestion  = store.UpdateQuestion
	deleteQuestion  = store.DeleteQuestion
)

const (
	notFound        = "Question not found"
	indexOutOfRange = "Correct answer index must be within options range"
)

var createMessages = handler.Messages{
	"Text.required":               "Question text is required",
	"Options.required":            "Options array is required and must not be empty",
	"Options.min":                 "Options array is required and must not be empty",
	"CorrectAnswerIndex.required": "Correct answer index is required",
}

// @Summary     List questions
// @Description 取得所有題目並展開作者，依建立時間新到舊
// @Tags        questions
// @Produce     json
// @Success     200 {object} api.Response{data=[]api.QuestionResponse}
// @Failure     500 {object} api.ErrorResponse
// @Router      /questions [get]
func ListQuestionsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		questions, err := listQuestions(c.Request().Context(), db)
		if err != nil {
			return apperr.Internal("Error retrieving questions", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuestionResponses(questions), "Questions retrieved successfully"))
	}
}

// @Summary     Get a question
// @Tags        questions
// @Produce     json
// @Param       id  path     int true "題目 ID"
// @Success     200 {object} api.Response{data=api.QuestionResponse}
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /questions/{id} [get]
func GetQuestionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "question")
		if err != nil {
			return err
		}
		q, err := getQuestionByID(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error retrieving question", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuestionResponse(q), "Question retrieved successfully"))
	}
}

// @Summary     Create a question
// @Description 任何登入使用者皆可建立題目並成為作者
// @Tags        questions
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateQuestionRequest true "題目內容"
// @Success     201  {object} api.Response{data=api.QuestionResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /questions [post]
func CreateQuestionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, ok := middleware.Principal(c)
		if !ok {
			return apperr.Unauthenticated("User not authenticated")
		}

		var req api.CreateQuestionRequest
		if err := handler.BindAndValidate(c, &req, createMessages); err != nil {
			return err
		}
		if !model.AnswerIndexValid(*req.CorrectAnswerIndex, len(req.Options)) {
			return apperr.Validation(indexOutOfRange)
		}

		q, err := createQuestion(c.Request().Context(), db, &model.Question{
			AuthorID:           principal.ID,
			Text:               req.Text,
			Options:            req.Options,
			Keywords:           req.Keywords,
			CorrectAnswerIndex: *req.CorrectAnswerIndex,
		})
		if err != nil {
			return apperr.Internal("Error creating question", err)
		}
		q.Author = &model.Author{ID: principal.ID, Username: principal.Username, Email: principal.Email}

		return c.JSON(http.StatusCreated, api.OK(api.NewQuestionResponse(q), "Question created successfully"))
	}
}

// @Summary     Update a question
// @Description 只有作者可以修改；只更新有提供的欄位，正確答案索引一律以最終選項數重新檢查
// @Tags        questions
// @Accept      json
// @Produce     json
// @Param       id   path     int                       true "題目 ID"
// @Param       body body     api.UpdateQuestionRequest true "要更新的欄位"
// @Success     200  {object} api.Response{data=api.QuestionResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /questions/{id} [put]
func UpdateQuestionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := boundOrLoad(c, db)
		if err != nil {
			return err
		}

		var req api.UpdateQuestionRequest
		if err := handler.BindAndValidate(c, &req, nil); err != nil {
			return err
		}

		// 先計算最終狀態並驗證，全部通過才套用
		next := *q
		if req.Text != nil {
			if *req.Text == "" {
				return apperr.Validation("Question text cannot be empty")
			}
			next.Text = *req.Text
		}
		if req.Options != nil {
			if len(*req.Options) == 0 {
				return apperr.Validation("Options must be a non-empty array")
			}
			next.Options = *req.Options
		}
		if req.Keywords != nil {
			next.Keywords = *req.Keywords
		}
		if req.CorrectAnswerIndex != nil {
			next.CorrectAnswerIndex = *req.CorrectAnswerIndex
		}
		if !next.AnswerInRange() {
			return apperr.Validation(indexOutOfRange)
		}

		err = updateQuestion(c.Request().Context(), db, &next)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error updating question", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuestionResponse(&next), "Question updated successfully"))
	}
}

// @Summary     Delete a question
// @Description 只有作者可以刪除，回傳被刪除的題目
// @Tags        questions
// @Produce     json
// @Param       id  path     int true "題目 ID"
// @Success     200 {object} api.Response{data=api.QuestionResponse}
// @Failure     400 {object} api.ErrorResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /questions/{id} [delete]
func DeleteQuestionHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "question")
		if err != nil {
			return err
		}
		deleted, err := deleteQuestion(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error deleting question", err)
		}
		if bound, ok := middleware.BoundQuestion(c); ok {
			deleted.Author = bound.Author
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuestionResponse(deleted), "Question deleted successfully"))
	}
}

// boundOrLoad 優先使用 RequireAuthor 已查到的題目
func boundOrLoad(c echo.Context, db database.DB) (*model.Question, error) {
	if q, ok := middleware.BoundQuestion(c); ok {
		return q, nil
	}
	id, err := handler.ParamID(c, "question")
	if err != nil {
		return nil, err
	}
	q, err := getQuestionByID(c.Request().Context(), db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(notFound)
	}
	if err != nil {
		return nil, apperr.Internal("Error updating question", err)
	}
	return q, nil
}
