package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"piaopiao-backend-go/internal/services"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps a ServiceError to its status and message. Anything
// else is a 500 with the generic fetch failure text.
func writeServiceError(w http.ResponseWriter, err error) {
	var serr services.ServiceError
	if errors.As(err, &serr) && serr.Status > 0 {
		WriteError(w, serr.Status, serr.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, services.MsgFetchFailed)
}
