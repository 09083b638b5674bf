package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

// MessageHandler serves the admin push API.
type MessageHandler struct {
	messenger domain.Messenger
	apiKey    string
	logger    *logging.Logger
}

func NewMessageHandler(messenger domain.Messenger, apiKey string, logger *logging.Logger) *MessageHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MessageHandler{
		messenger: messenger,
		apiKey:    apiKey,
		logger:    logger,
	}
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Validate API key
	key := r.Header.Get("X-API-Key")
	if key == "" {
		key = r.URL.Query().Get("api_key")
	}

	if !h.validKey(key) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "unauthorized"})
		return
	}

	// Parse request
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid json"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "user_id is required"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "message is required"})
		return
	}

	if err := h.messenger.Push(r.Context(), req.UserID, []domain.ReplyPayload{domain.TextPayload(req.Message)}); err != nil {
		h.logger.Error("push failed", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to send message"})
		return
	}

	writeJSON(w, http.StatusOK, &domain.SendMessageResponse{
		Status: "sent",
		UserID: req.UserID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validKey compares in constant time. An unset key rejects every caller.
func (h *MessageHandler) validKey(key string) bool {
	if h.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) == 1
}
