// Package dto defines the request and response bodies of the HTTP API.
package dto

import "time"

// MessageResponse 仅包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse 健康检查响应。Details 为支持连接池统计的依赖提供详细信息
type HealthResponse struct {
	Status    string                            `json:"status"`
	Timestamp time.Time                         `json:"timestamp"`
	Service   string                            `json:"service"`
	Checks    map[string]string                 `json:"checks,omitempty"`
	Details   map[string]map[string]interface{} `json:"details,omitempty"`
}
