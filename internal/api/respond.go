// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a pipeline error onto the HTTP surface. StandardError codes
// carry their own status mapping; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var stdErr *errs.StandardError
	if errors.As(err, &stdErr) {
		writeJSON(w, errs.HTTPStatus(stdErr.Code), errorResponse{Error: errorBody{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		}})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    "INTERNAL",
		Message: "internal server error",
	}})
}
