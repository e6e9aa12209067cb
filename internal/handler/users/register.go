package users

import (
	"errors"
	"net/http"
	"strings"

	"quiz-api/internal/api"
	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/handler"
	"quiz-api/internal/model"
	"quiz-api/internal/service"
	"quiz-api/internal/store"

	"github.com/labstack/echo/v4"
)

var registerMessages = handler.Messages{
	"Username.required": "Username is required",
	"Email.required":    "Email is required",
	"Email.email":       "Invalid email format",
	"Password.required": "Password is required",
}

// RegisterHandler 註冊新使用者並直接簽發 token
// @Summary     Register a new user
// @Description 建立一般使用者帳號 (Email 會自動轉小寫)，成功後回傳 token
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.RegisterRequest true "註冊資料"
// @Success     201  {object} api.Response{data=api.AuthUserResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users/register [post]
func RegisterHandler(db database.DB, tokens service.TokenIssuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := handler.BindAndValidate(c, &req, registerMessages); err != nil {
			return err
		}
		ctx := c.Request().Context()
		email := strings.ToLower(strings.TrimSpace(req.Email))

		taken, err := emailTaken(ctx, db, email, 0)
		if err != nil {
			return apperr.Internal("Error registering user", err)
		}
		if taken {
			return apperr.Conflict("Email already registered")
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return apperr.Internal("Error registering user", err)
		}

		user, err := createUser(ctx, db, &model.User{
			Username:     req.Username,
			Email:        email,
			PasswordHash: hash,
			IsAdmin:      false,
		})
		if errors.Is(err, store.ErrDuplicateEmail) {
			// 併發註冊時由 unique index 擋下
			return apperr.Conflict("Email already registered")
		}
		if err != nil {
			return apperr.Internal("Error registering user", err)
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return apperr.Internal("Error generating token", err)
		}

		return c.JSON(http.StatusCreated, api.Response{
			Success: true,
			Data:    api.NewAuthUserResponse(user),
			Message: "User registered successfully",
			Token:   token,
		})
	}
}
