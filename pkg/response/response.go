// Package response writes the API's JSON bodies. Success responses are the
// bare payload; failures are {"message"} for client errors and
// {"message","error"} for server errors.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the 4xx body.
type ErrorBody struct {
	Message string `json:"message"`
}

// ServerErrorBody is the 5xx body. Error carries the underlying cause.
type ServerErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends a 200 with v as the body.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Error sends a client error.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// ServerError sends a 500 carrying err's text.
func ServerError(w http.ResponseWriter, message string, err error) {
	body := ServerErrorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
