package server

import (
	"encoding/json"
	"net/http"

	"github.com/user/todograph-go/apperror"
)

// writeJSON serializes `data` to JSON and writes it with the given `status`.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// writeError converts any error into a standardized `apperror.ErrorResponse`.
// Errors that are not AppErrors are reported as internal errors without their details.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
