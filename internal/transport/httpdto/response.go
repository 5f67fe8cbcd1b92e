package httpdto

import "net/http"

// Response is the uniform envelope every endpoint writes, success or
// failure. Code carries a machine-readable error class so clients can
// branch without parsing Error text.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{Success: false, Error: err, Code: code}
}

// NewStatusErrorResponse builds an error envelope whose code is derived
// from the HTTP status, for handlers that already resolved one.
func NewStatusErrorResponse(status int, err string) Response[any] {
	return NewErrorResponse(err, CodeForStatus(status))
}

// CodeForStatus maps a response status onto its wire error code.
// Unrecognized statuses collapse to INTERNAL_ERROR.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
