package quizzes

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
	listQuizzes        = store.ListQuizzes
	getQuizByID        = store.GetQuizByID
	listQuestionsByIDs = store.ListQuestionsByIDs
	createQuiz         = store.CreateQuiz
	updateQuiz         = store.UpdateQuiz
	deleteQuiz         = store.DeleteQuiz
)

const notFound = "Quiz not found"

const invalidQuestionIDs = "Questions must be an array of valid question IDs"

var createMessages = handler.Messages{
	"Title.required": "Title is required",
	"Questions.min":  invalidQuestionIDs,
	"Questions.max":  invalidQuestionIDs,
}

var updateMessages = handler.Messages{
	"Questions.min": invalidQuestionIDs,
	"Questions.max": invalidQuestionIDs,
}

// @Summary     List quizzes
// @Description 取得所有測驗，只展開作者，questions 為題目 ID
// @Tags        quizzes
// @Produce     json
// @Success     200 {object} api.Response{data=[]api.QuizResponse}
// @Failure     500 {object} api.ErrorResponse
// @Router      /quizzes [get]
func ListQuizzesHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		quizzes, err := listQuizzes(c.Request().Context(), db)
		if err != nil {
			return apperr.Internal("Error retrieving quizzes", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuizResponses(quizzes), "Quizzes retrieved successfully"))
	}
}

// @Summary     Get a quiz
// @Description 展開作者與完整題目，順序與測驗中的題目 ID 相同
// @Tags        quizzes
// @Produce     json
// @Param       id  path     int true "測驗 ID"
// @Success     200 {object} api.Response{data=api.QuizDetailResponse}
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /quizzes/{id} [get]
func GetQuizHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "quiz")
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		z, err := getQuizByID(ctx, db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error retrieving quiz", err)
		}
		questions, err := listQuestionsByIDs(ctx, db, z.QuestionIDs)
		if err != nil {
			return apperr.Internal("Error retrieving quiz", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuizDetailResponse(z, questions), "Quiz retrieved successfully"))
	}
}

// @Summary     Create a quiz
// @Description 管理員建立測驗；題目 ID 不檢查是否存在
// @Tags        quizzes
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateQuizRequest true "測驗內容"
// @Success     201  {object} api.Response{data=api.QuizResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /quizzes [post]
func CreateQuizHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, ok := middleware.Principal(c)
		if !ok {
			return apperr.Unauthenticated("User not authenticated")
		}

		var req api.CreateQuizRequest
		if err := handler.BindAndValidate(c, &req, createMessages); err != nil {
			return err
		}

		if req.Questions == nil {
			req.Questions = []int{}
		}

		z, err := createQuiz(c.Request().Context(), db, &model.Quiz{
			AuthorID:    principal.ID,
			Title:       req.Title,
			Description: req.Description,
			QuestionIDs: req.Questions,
		})
		if err != nil {
			return apperr.Internal("Error creating quiz", err)
		}
		z.Author = &model.Author{ID: principal.ID, Username: principal.Username, Email: principal.Email}

		return c.JSON(http.StatusCreated, api.OK(api.NewQuizResponse(z), "Quiz created successfully"))
	}
}

// @Summary     Update a quiz
// @Description 管理員更新測驗，只更新有提供的欄位
// @Tags        quizzes
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "測驗 ID"
// @Param       body body     api.UpdateQuizRequest true "要更新的欄位"
// @Success     200  {object} api.Response{data=api.QuizResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /quizzes/{id} [put]
func UpdateQuizHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "quiz")
		if err != nil {
			return err
		}
		var req api.UpdateQuizRequest
		if err := handler.BindAndValidate(c, &req, updateMessages); err != nil {
			return err
		}
		if req.Title != nil && *req.Title == "" {
			return apperr.Validation("Title cannot be empty")
		}

		ctx := c.Request().Context()
		z, err := getQuizByID(ctx, db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error updating quiz", err)
		}

		if req.Title != nil {
			z.Title = *req.Title
		}
		if req.Description != nil {
			z.Description = *req.Description
		}
		if req.Questions != nil {
			z.QuestionIDs = *req.Questions
		}

		err = updateQuiz(ctx, db, z)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error updating quiz", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuizResponse(z), "Quiz updated successfully"))
	}
}

// @Summary     Delete a quiz
// @Description 管理員刪除測驗，回傳被刪除的資料
// @Tags        quizzes
// @Produce     json
// @Param       id  path     int true "測驗 ID"
// @Success     200 {object} api.Response{data=api.QuizResponse}
// @Failure     400 {object} api.ErrorResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /quizzes/{id} [delete]
func DeleteQuizHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "quiz")
		if err != nil {
			return err
		}
		z, err := deleteQuiz(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(notFound)
		}
		if err != nil {
			return apperr.Internal("Error deleting quiz", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewQuizResponse(z), "Quiz deleted successfully"))
	}
}
