// File: internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 錯誤分類，決定回應的 HTTP 狀態碼
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidCredentials
	KindPrincipalNotFound
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindPrincipalNotFound:
		return "PrincipalNotFound"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "Internal"
	}
}

// Status 對應的 HTTP 狀態碼
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredentials, KindPrincipalNotFound:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error 帶有分類與對外訊息的錯誤；Err 為內部原因，不會回傳給客戶端
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error       { return New(KindValidation, message) }
func Unauthenticated(message string) *Error  { return New(KindUnauthenticated, message) }
func Forbidden(message string) *Error        { return New(KindForbidden, message) }
func NotFound(message string) *Error         { return New(KindNotFound, message) }
func Conflict(message string) *Error         { return New(KindConflict, message) }
func TooManyRequests(message string) *Error  { return New(KindTooManyRequests, message) }
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf 取出錯誤分類；非 *Error 一律視為 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf 取出錯誤對應的 HTTP 狀態碼
func StatusOf(err error) int {
	return KindOf(err).Status()
}
