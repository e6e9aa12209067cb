// File: internal/api/health.go
package api

// PingResponse 健康檢查回應模型
// swagger:model api.PingResponse
type PingResponse struct {
	Message string `json:"message" example:"pong"`
}
