package handler

import (
	"errors"
	"strings"

	"quiz-api/internal/apperr"
	"quiz-api/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const invalidBody = "Invalid request body"

// ParamID 解析路徑上的 :id，非整數或超出 int4 範圍時回傳 invalid <entity> ID
func ParamID(c echo.Context, entity string) (int, error) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		return 0, apperr.Validation("invalid " + entity + " ID")
	}
	return id, nil
}

// Messages 以 "欄位.規則" 對應驗證失敗時的訊息，例如 "Email.required"
type Messages map[string]string

// BindAndValidate 綁定 JSON body 並執行 validator；回傳第一個失敗欄位對應的訊息
func BindAndValidate(c echo.Context, req any, messages Messages) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, invalidBody, err)
	}
	if err := c.Validate(req); err != nil {
		return validationError(err, messages)
	}
	return nil
}

func validationError(err error, messages Messages) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		// dive 產生的欄位名帶索引，例如 Questions[2]
		field, _, _ := strings.Cut(fe.Field(), "[")
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			return apperr.Wrap(apperr.KindValidation, msg, err)
		}
		return apperr.Wrap(apperr.KindValidation, field+" is invalid", err)
	}
	return apperr.Wrap(apperr.KindValidation, invalidBody, err)
}
