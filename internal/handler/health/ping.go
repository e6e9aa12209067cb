package health

import (
	"net/http"
	"time"

	"quiz-api/internal/api"
	"quiz-api/internal/apperr"
	"quiz-api/internal/cache"
	"quiz-api/internal/database"

	"github.com/labstack/echo/v4"
)

const pingKey = "health:ping"

// PingHandler 健康檢查（需通過認證）
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} api.Response{data=api.PingResponse}
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /ping [get]
func PingHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		if err := db.Ping(reqCtx); err != nil {
			return apperr.Internal("database unhealthy", err)
		}
		if err := c.Set(reqCtx, pingKey, time.Now().Unix(), time.Minute).Err(); err != nil {
			return apperr.Internal("cache unhealthy", err)
		}
		return ctx.JSON(http.StatusOK, api.OK(api.PingResponse{Message: "pong"}, "pong"))
	}
}
