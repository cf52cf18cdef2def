package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the canned reply returned by the responder.
type ChatResponse struct {
	Reply     string `json:"reply"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse is returned by the liveness routes.
type StatusResponse struct {
	Status string `json:"status"`
}

// API Error response
type ErrorResponse struct {
	Error string `json:"error"`
}
