package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartdaycare/chat-service/internal/application"
	"github.com/smartdaycare/chat-service/internal/domain"
	"github.com/smartdaycare/chat-service/internal/observability"
)

// ChatHandler exposes the durable conversation API consumed by the UI layer.
type ChatHandler struct {
	S   *application.Service
	Log *zap.Logger
}

func NewChatHandler(s *application.Service, log *zap.Logger) *ChatHandler {
	return &ChatHandler{S: s, Log: log}
}

// Create returns the conversation for a participant pair, creating it on
// first contact.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant1 domain.Participant `json:"participant1"`
		Participant2 domain.Participant `json:"participant2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	conv, err := h.S.CreateOrGet(r.Context(), req.Participant1, req.Participant2)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// ListForUser returns the user's conversations, most recent first.
func (h *ChatHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	convs, err := h.S.ListForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if convs == nil {
		convs = []*domain.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

// Stats returns conversation count and unread total for a user.
func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.S.StatsForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListMessages returns a conversation's messages oldest first.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")
	if offset == 0 {
		// legacy clients send skip
		offset = queryInt(r, "skip")
	}

	msgs, err := h.S.ListMessages(r.Context(), chi.URLParam(r, "chatID"), limit, offset)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// AppendMessage persists a message and updates the owning conversation.
func (h *ChatHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string      `json:"conversationId"`
		ChatID         string      `json:"chatId"`
		SenderID       string      `json:"senderId"`
		SenderRole     domain.Role `json:"senderRole"`
		Content        string      `json:"content"`
		Timestamp      *time.Time  `json:"timestamp,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cmd := application.AppendMessageCommand{
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		SenderRole:     req.SenderRole,
		Content:        req.Content,
	}
	if cmd.ConversationID == "" {
		cmd.ConversationID = req.ChatID
	}
	if req.Timestamp != nil {
		cmd.Timestamp = *req.Timestamp
	}

	msg, err := h.S.AppendMessage(r.Context(), cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	observability.MessagesAppendedTotal.Inc()
	writeJSON(w, http.StatusCreated, msg)
}

// MarkRead marks every foreign message in a conversation as read.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		ReaderID string `json:"readerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	reader := req.ReaderID
	if reader == "" {
		reader = req.UserID
	}

	if err := h.S.MarkRead(r.Context(), chi.URLParam(r, "chatID"), reader); err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a conversation and all its messages.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.S.Delete(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Participants returns the two participants of a conversation.
func (h *ChatHandler) Participants(w http.ResponseWriter, r *http.Request) {
	conv, err := h.S.GetConversation(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, conv.Participants)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
