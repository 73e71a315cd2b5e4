package utils

import (
	"encoding/json"
	"net/http"

	"github.com/brizzai/dishom-client/internal/logger"
	"go.uber.org/zap"
)

// ErrorBody is the JSON error shape of the local HTTP endpoints, it mirrors
// the detail/code pair the backend answers with
type ErrorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code, detail string, status int) {
	WriteJSON(w, status, ErrorBody{Code: code, Detail: detail})
}
