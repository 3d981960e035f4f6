package httpapi

import (
	"net/http"

	"piaopiao-backend-go/internal/services"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	sample := services.CaptureHealth(r.Context(), s.DB)
	status := http.StatusOK
	if !sample.Healthy() {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, sample)
}
