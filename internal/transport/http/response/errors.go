package response

import (
	"errors"
	"net/http"

	"docuisine/internal/domain"
)

// FromError maps a service error onto an envelope code and a client-safe
// message. Errors outside the domain taxonomy become a generic 500 so
// storage details never reach the client.
func FromError(err error) (int, string) {
	if err == nil {
		return CodeOK, CodeMsgMap[CodeOK]
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return CodeTooLarge, "request body too large"
	}
	e := domain.As(err)
	if e == nil {
		return CodeServerError, CodeMsgMap[CodeServerError]
	}
	switch e.Kind() {
	case domain.KindNotFound:
		return CodeNotFound, e.Error()
	case domain.KindConflict:
		return CodeConflict, e.Error()
	case domain.KindInvalidArgument:
		return CodeBadRequest, e.Error()
	case domain.KindInvalidCredential:
		return CodeUnauthorized, e.Error()
	case domain.KindUnsupportedFormat:
		return CodeUnsupportedMedia, e.Error()
	case domain.KindForbidden:
		return CodeForbidden, e.Error()
	default:
		return CodeServerError, CodeMsgMap[CodeServerError]
	}
}
