// Package api exposes the chat service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"order-chatbot/internal/chat"
	"order-chatbot/internal/common/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	HeaderConversationID = "X-Conversation-Id"

	maxMessageLength = 1000
	maxBodyBytes     = 64 << 10
)

// Chatter runs one turn. *chat.Service satisfies it.
type Chatter interface {
	HandleMessage(ctx context.Context, conversationID, message string) (*chat.Reply, error)
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required, validation.RuneLength(1, maxMessageLength)),
		validation.Field(&r.ConversationID, validation.RuneLength(0, 128)),
	)
}

type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatHandler struct {
	chat    Chatter
	timeout time.Duration
	logger  logger.Logger
}

func NewChatHandler(c Chatter, timeout time.Duration, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat:    c,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// ServeHTTP handles POST /chat. The conversation id comes from the body,
// then the X-Conversation-Id header, and is minted when both are empty.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = strings.TrimSpace(r.Header.Get(HeaderConversationID))
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.chat.HandleMessage(ctx, conversationID, req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chat.ErrMissingConversationID) {
			status = http.StatusBadRequest
		}
		h.logger.Error("chat turn rejected", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err,
		})
		writeJSON(w, status, ErrorResponse{Error: http.StatusText(status)})
		return
	}

	w.Header().Set(HeaderConversationID, conversationID)
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply.Text, ConversationID: conversationID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
