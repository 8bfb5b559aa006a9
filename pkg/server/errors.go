package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matzehuels/planboard/pkg/errors"
)

var (
	errNotFound         = errors.New(errors.ErrCodeNotFound, "not found")
	errMethodNotAllowed = errors.New(errors.ErrCodeUnsupported, "method not allowed")
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error to an HTTP status: bad parameters and navigation
// state are the client's fault, anything else is ours.
func statusFor(err error) int {
	if errors.IsConfiguration(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidTheme:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// sourceStatus is the status for a failed item load: 502, or 503 once the
// request context is done.
func sourceStatus(ctx context.Context) int {
	if ctx.Err() != nil {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError && code == errors.ErrCodeInternal {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
