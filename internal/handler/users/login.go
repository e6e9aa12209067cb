package users

import (
	"context"
	"errors"
	"net/http"

	"quiz-api/internal/api"
	"quiz-api/internal/apperr"
	"quiz-api/internal/database"
	"quiz-api/internal/handler"
	"quiz-api/internal/service"
	"quiz-api/internal/store"
	"quiz-api/internal/worker"

	"github.com/labstack/echo/v4"
)

const invalidLogin = "Invalid username or password"

var loginMessages = handler.Messages{
	"Username.required": "Username is required",
	"Password.required": "Password is required",
}

// LoginHandler 使用 Username/Password 驗證並回傳 JWT
// @Summary     Login
// @Description 驗證帳號密碼並回傳 token；連續失敗過多次會暫時鎖定
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "登入資料"
// @Success     200  {object} api.Response{data=api.AuthUserResponse}
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     429  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users/login [post]
func LoginHandler(db database.DB, tokens service.TokenIssuer, limiter LoginLimiter, pool worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := handler.BindAndValidate(c, &req, loginMessages); err != nil {
			return err
		}
		ctx := c.Request().Context()
		logger := c.Logger()

		allowed, err := limiter.Allowed(ctx, req.Username)
		if err != nil {
			logger.Warnf("login throttle unavailable: %v", err)
		}
		if !allowed {
			return apperr.TooManyRequests("Too many failed login attempts, try again later")
		}

		fail := func(cause error) error {
			if err := limiter.RecordFailure(ctx, req.Username); err != nil {
				logger.Warnf("record login failure: %v", err)
			}
			return apperr.Wrap(apperr.KindInvalidCredentials, invalidLogin, cause)
		}

		user, err := getUserByUsername(ctx, db, req.Username)
		if errors.Is(err, store.ErrNotFound) {
			return fail(err)
		}
		if err != nil {
			return apperr.Internal("Error logging in", err)
		}
		if err := authenticateUser(*user, req.Password); err != nil {
			return fail(err)
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return apperr.Internal("Error generating token", err)
		}

		if err := limiter.Reset(ctx, req.Username); err != nil {
			logger.Warnf("reset login failures: %v", err)
		}

		userID, at := user.ID, timeNow()
		pool.Submit(func() {
			if err := touchLastLogin(context.Background(), db, userID, at); err != nil {
				logger.Errorf("update last login for user %d: %v", userID, err)
			}
		})

		return c.JSON(http.StatusOK, api.Response{
			Success: true,
			Data:    api.NewAuthUserResponse(user),
			Message: "Login successful",
			Token:   token,
		})
	}
}
