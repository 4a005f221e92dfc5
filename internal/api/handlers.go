package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ateliergo/atelier/internal/models"
	"github.com/go-chi/chi/v5"
)

// healthHandler reports service liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, successResponse(map[string]string{"service": "atelier"}))
}

// getProfileHandler returns the stored profile for a user.
func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	slog.Debug("Server.getProfileHandler: processing request", "user_id", userID)

	p, err := s.st.GetProfile(userID)
	if err != nil {
		slog.Error("Server.getProfileHandler: store error", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse("Failed to load profile"))
		return
	}
	if p == nil {
		writeJSONResponse(w, http.StatusNotFound, errorResponse("Profile not found"))
		return
	}

	writeJSONResponse(w, http.StatusOK, successResponse(p))
}

// getConversationHandler returns the bounded message history for a user.
// An optional limit query parameter trims the result to the most recent entries.
func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	slog.Debug("Server.getConversationHandler: processing request", "user_id", userID)

	limit := models.MaxConversationLength
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSONResponse(w, http.StatusBadRequest, errorResponse("Invalid limit parameter"))
			return
		}
		limit = parsed
	}

	messages, err := s.convLog.Recent(userID, limit)
	if err != nil {
		slog.Error("Server.getConversationHandler: store error", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse("Failed to load conversation"))
		return
	}

	writeJSONResponse(w, http.StatusOK, successResponse(messages))
}

// sendRequest is the payload for the operator send endpoint.
type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// sendHandler delivers an operator-initiated message to a user.
func (s *Server) sendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.sendHandler: processing send request", "method", r.Method, "path", r.URL.Path)

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sendHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, errorResponse("Invalid JSON format"))
		return
	}
	if req.Body == "" {
		writeJSONResponse(w, http.StatusBadRequest, errorResponse("Message body cannot be empty"))
		return
	}

	canonicalTo, err := s.msgService.ValidateAndCanonicalizeRecipient(req.To)
	if err != nil {
		slog.Warn("Server.sendHandler: recipient validation failed", "error", err, "original_to", req.To)
		writeJSONResponse(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := s.msgService.SendMessage(r.Context(), canonicalTo, req.Body); err != nil {
		slog.Error("Server.sendHandler: failed to send message", "error", err, "to", canonicalTo)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse("Failed to send message"))
		return
	}

	slog.Info("Server.sendHandler: message sent successfully", "to", canonicalTo)
	writeJSONResponse(w, http.StatusOK, successResponse(map[string]string{"to": canonicalTo}))
}
