// File: internal/api/envelope.go
package api

// Response 成功回應信封
// swagger:model api.Response
type Response struct {
	Success bool   `json:"success" example:"true"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message" example:"Questions retrieved successfully"`
	Token   string `json:"token,omitempty" example:"eyJhbGciOi..."`
}

// ErrorResponse 失敗回應信封
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Question not found"`
}

// OK 組裝成功回應
func OK(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}
