package handlers

import (
	"errors"
	"io"
	"net/http"

	"komo-backend/internal/models"
	"komo-backend/internal/services"
)

const chatReadyStatus = "Chat endpoint ready"

type ChatHandler struct {
	chatService  *services.ChatService
	maxBodyBytes int64
}

func NewChatHandler(chatService *services.ChatService, maxBodyBytes int64) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		maxBodyBytes: maxBodyBytes,
	}
}

// Chat answers POST /chat. The body must carry a declared length.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("Missing Content-Length"))
		return
	}
	if h.maxBodyBytes > 0 && r.ContentLength > h.maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Request body too large"))
		return
	}

	var body io.Reader = r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("Failed to read request body"))
		return
	}

	resp, err := h.chatService.Handle(data)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Status answers GET /chat without touching the rule table.
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: chatReadyStatus})
}
