// File: internal/apperr/handler.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"quiz-api/internal/api"

	"github.com/labstack/echo/v4"
)

const internalMessage = "Internal Server Error"

// HTTPErrorHandler 將 handler 與中介層回傳的錯誤統一轉成回應信封
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := resolve(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("request %s %s failed (id=%s): %v",
			c.Request().Method, c.Request().URL.Path,
			c.Response().Header().Get(echo.HeaderXRequestID), err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, api.ErrorResponse{Success: false, Message: message})
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}

func resolve(err error) (int, string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		status := appErr.Kind.Status()
		if appErr.Message == "" {
			return status, http.StatusText(status)
		}
		return status, appErr.Message
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if inner, ok := he.Internal.(*echo.HTTPError); ok {
				he = inner
			}
		}
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			msg = internalMessage
		}
		return he.Code, msg
	}

	return http.StatusInternalServerError, internalMessage
}
