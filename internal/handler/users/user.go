package users

import (
	"errors"
	"net/http"
	"strings"

	"quiz-api/internal/api"
	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/handler"
	"quiz-api/internal/middleware"
	"quiz-api/internal/store"

	"github.com/labstack/echo/v4"
)

// @Summary     List users
// @Description 管理員取得所有使用者，依建立時間新到舊
// @Tags        users
// @Produce     json
// @Success     200 {object} api.Response{data=[]api.UserResponse}
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := listUsers(c.Request().Context(), db)
		if err != nil {
			return apperr.Internal("Error retrieving users", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewUserResponses(users), "Users retrieved successfully"))
	}
}

// @Summary     Get a user by ID
// @Description 透過 ID 查詢使用者公開資料
// @Tags        users
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} api.Response{data=api.UserResponse}
// @Failure     400 {object} api.ErrorResponse "參數錯誤"
// @Failure     404 {object} api.ErrorResponse "使用者不存在"
// @Failure     500 {object} api.ErrorResponse
// @Router      /users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "user")
		if err != nil {
			return err
		}
		user, err := getUserByID(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return apperr.Internal("Error retrieving user", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewUserResponse(user), "User retrieved successfully"))
	}
}

// @Summary     Update a user
// @Description 本人或管理員可更新 username、email、password，只更新有提供的欄位
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "使用者 ID"
// @Param       body body     api.UpdateUserRequest true "要更新的欄位"
// @Success     200  {object} api.Response{data=api.UserResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/{id} [put]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "user")
		if err != nil {
			return err
		}
		principal, ok := middleware.Principal(c)
		if !ok {
			return apperr.Unauthenticated("User not authenticated")
		}
		if principal.ID != id && !principal.IsAdmin {
			return apperr.Forbidden("You can only update your own profile")
		}

		var req api.UpdateUserRequest
		if err := handler.BindAndValidate(c, &req, handler.Messages{"Email.email": "Invalid email format"}); err != nil {
			return err
		}
		// 所有欄位先驗證完才開始套用
		if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
			return apperr.Validation("Email cannot be empty")
		}
		if req.Password != nil && *req.Password == "" {
			return apperr.Validation("Password cannot be empty")
		}

		ctx := c.Request().Context()
		user, err := getUserByID(ctx, db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return apperr.Internal("Error updating user", err)
		}

		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			taken, err := emailTaken(ctx, db, email, id)
			if err != nil {
				return apperr.Internal("Error updating user", err)
			}
			if taken {
				return apperr.Conflict("Email already registered")
			}
			user.Email = email
		}
		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Password != nil {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return apperr.Internal("Error updating user", err)
			}
			user.PasswordHash = hash
		}

		err = updateUser(ctx, db, user)
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			return apperr.Conflict("Email already registered")
		case errors.Is(err, store.ErrNotFound):
			return apperr.NotFound("User not found")
		case err != nil:
			return apperr.Internal("Error updating user", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewUserResponse(user), "User updated successfully"))
	}
}

// @Summary     Delete a user
// @Description 管理員刪除使用者，回傳被刪除的資料；其題目與測驗保留
// @Tags        users
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} api.Response{data=api.UserResponse}
// @Failure     400 {object} api.ErrorResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/{id} [delete]
func DeleteUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := handler.ParamID(c, "user")
		if err != nil {
			return err
		}
		user, err := deleteUser(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return apperr.Internal("Error deleting user", err)
		}
		return c.JSON(http.StatusOK, api.OK(api.NewUserResponse(user), "User deleted successfully"))
	}
}
