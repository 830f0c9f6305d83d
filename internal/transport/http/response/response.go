package response

import "time"

// 错误码直接沿用 HTTP 语义的短码
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeServerError     = "INTERNAL_SERVER_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeTimeout         = "REQUEST_TIMEOUT"
)

// Error 统一错误响应体
type Error struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewError(code, message string) Error {
	return Error{Code: code, Message: message, Timestamp: time.Now()}
}
