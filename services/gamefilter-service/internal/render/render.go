// Package render writes JSON responses.
package render

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of requests that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes v with status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a machine readable reason.
func Error(w http.ResponseWriter, code int, reason string) {
	JSON(w, code, ErrorResponse{Error: reason})
}

// OK writes {"message":"ok"}.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}
