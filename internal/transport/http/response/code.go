package response

import "net/http"

// Envelope codes. Failures reuse the HTTP status they are sent with.
const (
	CodeOK               = 0
	CodeBadRequest       = http.StatusBadRequest
	CodeUnauthorized     = http.StatusUnauthorized
	CodeForbidden        = http.StatusForbidden
	CodeNotFound         = http.StatusNotFound
	CodeMethodNotAllowed = http.StatusMethodNotAllowed
	CodeConflict         = http.StatusConflict
	CodeTooLarge         = http.StatusRequestEntityTooLarge
	CodeUnsupportedMedia = http.StatusUnsupportedMediaType
	CodeTooManyRequests  = http.StatusTooManyRequests
	CodeServerError      = http.StatusInternalServerError
	CodeUnavailable      = http.StatusServiceUnavailable
	CodeTimeout          = http.StatusGatewayTimeout
)

var CodeMsgMap = map[int]string{
	CodeOK:               "OK",
	CodeBadRequest:       "Bad Request",
	CodeUnauthorized:     "Unauthorized",
	CodeForbidden:        "Forbidden",
	CodeNotFound:         "Not Found",
	CodeMethodNotAllowed: "Method Not Allowed",
	CodeConflict:         "Conflict",
	CodeTooLarge:         "Request Entity Too Large",
	CodeUnsupportedMedia: "Unsupported Media Type",
	CodeTooManyRequests:  "Too Many Requests",
	CodeServerError:      "Internal Server Error",
	CodeUnavailable:      "Service Unavailable",
	CodeTimeout:          "Gateway Timeout",
}

// Status is the HTTP status an envelope with code is sent with.
func Status(code int) int {
	if code == CodeOK {
		return http.StatusOK
	}
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}
