package services

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"komo-backend/internal/models"
	"komo-backend/internal/responder"
)

// TimestampLayout is fixed width and always UTC so timestamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// ChatService turns a raw chat request into a canned reply. It holds no
// per-request state and is safe for concurrent use.
type ChatService struct {
	responder *responder.Responder
}

func NewChatService(r *responder.Responder) *ChatService {
	return &ChatService{responder: r}
}

// Decode parses a request body and returns the content of the last message
// whose role is "user", or "" when there is none.
//
// A body that is not UTF-8 JSON, a top level that is not an object and a
// missing "messages" key are client errors. Only the messages visited while
// scanning back to the last user turn are inspected; a visited element that
// is not an object, or a user turn whose content is not a string, is reported
// as a plain error.
func (s *ChatService) Decode(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", &ValidationError{Message: "Request body must be UTF-8"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", &ValidationError{Message: "Invalid request data"}
	}

	raw, ok := top["messages"]
	if !ok {
		return "", &ValidationError{Message: "Invalid request data"}
	}

	var messages []json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return "", fmt.Errorf("unexpected messages shape: %w", err)
	}

	return lastUserContent(messages)
}

func lastUserContent(messages []json.RawMessage) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(messages[i], &fields); err != nil || fields == nil {
			return "", fmt.Errorf("unexpected message shape at index %d: not an object", i)
		}

		// a role that is missing or not a string is simply not "user"
		var role string
		if r, ok := fields["role"]; !ok || json.Unmarshal(r, &role) != nil || role != "user" {
			continue
		}

		var msg models.ChatMessage
		if err := json.Unmarshal(messages[i], &msg); err != nil {
			return "", fmt.Errorf("unexpected message shape at index %d: %w", i, err)
		}
		return msg.Content, nil
	}
	return "", nil
}

func (s *ChatService) Reply(utterance string) models.ChatResponse {
	return models.ChatResponse{
		Reply:     s.responder.Respond(utterance),
		Model:     responder.ModelName,
		Timestamp: s.responder.Now().UTC().Format(TimestampLayout),
	}
}

// Handle is Decode followed by Reply.
func (s *ChatService) Handle(body []byte) (models.ChatResponse, error) {
	utterance, err := s.Decode(body)
	if err != nil {
		return models.ChatResponse{}, err
	}
	return s.Reply(utterance), nil
}
