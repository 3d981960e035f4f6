package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"piaopiao-backend-go/internal/messaging"

	"go.uber.org/zap"
)

func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	events, err := s.parseEvents(r)
	if err != nil {
		if errors.Is(err, messaging.ErrInvalidSignature) {
			s.Logger.Warn("webhook signature rejected", zap.String("remote", r.RemoteAddr))
			WriteError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		s.Logger.Error("webhook parse failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "invalid payload")
		return
	}
	s.Dispatcher.HandleEvents(r.Context(), events)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

type SendSummaryRequest struct {
	ProjectID string `json:"project_id"`
	GroupID   string `json:"group_id"`
}

func (s *Server) SendProjectSummary(w http.ResponseWriter, r *http.Request) {
	var req SendSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.GroupID = strings.TrimSpace(req.GroupID)

	if err := s.Dispatcher.PushSummary(r.Context(), req.ProjectID, req.GroupID); err != nil {
		s.Logger.Error("summary push failed",
			zap.String("project_id", req.ProjectID),
			zap.String("group_id", req.GroupID),
			zap.String("caller", CurrentCaller(r)),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
