package services

import (
	"errors"
	"testing"
	"time"

	"komo-backend/internal/responder"
)

const emptyGreeting = "Hello! I'm Komo AI. How can I help you today?"

func newTestChatService(now time.Time) *ChatService {
	r := responder.New(responder.DefaultRules(),
		responder.WithClock(func() time.Time { return now }),
		responder.WithPicker(responder.PickerFunc(func(int) int { return 0 })),
	)
	return NewChatService(r)
}

func TestDecode_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"truncated", `{"messages": [`},
		{"empty body", ""},
		{"null", "null"},
		{"empty object", "{}"},
		{"array", `[{"role":"user"}]`},
		{"string", `"messages"`},
		{"missing messages", `{"message": "hi"}`},
		{"not utf-8", "{\"messages\": [{\"role\": \"user\", \"content\": \"caf\xe9\"}]}"},
	}

	s := newTestChatService(time.Now())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Decode([]byte(tc.body))

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}
}

func TestDecode_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"messages is a string", `{"messages": "hi"}`},
		{"messages is an object", `{"messages": {"role": "user"}}`},
		{"last element is a number", `{"messages": [{"role": "user", "content": "hi"}, 1]}`},
		{"visited element is null", `{"messages": [null]}`},
		{"user content is a number", `{"messages": [{"role": "user", "content": 5}]}`},
		{"user content is an object", `{"messages": [{"role": "assistant", "content": "x"}, {"role": "user", "content": {"text": "hi"}}]}`},
	}

	s := newTestChatService(time.Now())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Decode([]byte(tc.body))
			if err == nil {
				t.Fatal("expected error")
			}

			var verr *ValidationError
			if errors.As(err, &verr) {
				t.Fatalf("shape errors must not be validation errors: %v", err)
			}
		})
	}
}

func TestDecode_IgnoresMessagesBeforeLastUserTurn(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"system content is an object", `{"messages": [{"role": "system", "content": {"lang": "en"}}, {"role": "user", "content": "hello"}]}`, "hello"},
		{"assistant role is a number", `{"messages": [{"role": "user", "content": "hello"}, {"role": 1, "content": "x"}]}`, "hello"},
		{"older user content is a number", `{"messages": [{"role": "user", "content": 5}, {"role": "user", "content": "hello"}]}`, "hello"},
		{"unvisited element is not an object", `{"messages": [42, "junk", {"role": "user", "content": "hello"}]}`, "hello"},
		{"last user wins", `{"messages": [{"role": "user", "content": "first"}, {"role": "assistant", "content": "reply"}, {"role": "user", "content": "second"}, {"role": "assistant", "content": "again"}]}`, "second"},
		{"no user", `{"messages": [{"role": "system", "content": "x"}, {"role": "assistant", "content": "y"}]}`, ""},
		{"role is case sensitive", `{"messages": [{"role": "User", "content": "x"}]}`, ""},
		{"missing role", `{"messages": [{"content": "orphan"}]}`, ""},
		{"missing content", `{"messages": [{"role": "user"}]}`, ""},
		{"null content", `{"messages": [{"role": "user", "content": null}]}`, ""},
		{"null messages", `{"messages": null}`, ""},
		{"extra keys", `{"messages": [{"role": "user", "content": "hi", "name": "x"}], "stream": true}`, "hi"},
	}

	s := newTestChatService(time.Now())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Decode([]byte(tc.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestHandle_NoUserMessageGetsEmptyGreeting(t *testing.T) {
	s := newTestChatService(time.Now())

	resp, err := s.Handle([]byte(`{"messages": [{"role": "assistant", "content": "hello"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reply != emptyGreeting {
		t.Errorf("expected empty greeting, got %q", resp.Reply)
	}
}

func TestHandle_Response(t *testing.T) {
	s := newTestChatService(time.Date(2026, 2, 16, 9, 5, 7, 123456000, time.UTC))

	resp, err := s.Handle([]byte(`{"messages": [{"role": "user", "content": "What time is it?"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Reply != "The current server time is 09:05:07." {
		t.Errorf("unexpected reply %q", resp.Reply)
	}
	if resp.Model != responder.ModelName {
		t.Errorf("Expected model %q, got %q", responder.ModelName, resp.Model)
	}
	if resp.Timestamp != "2026-02-16T09:05:07.123456Z" {
		t.Errorf("unexpected timestamp %q", resp.Timestamp)
	}
}

func TestReply_TimestampIsUTC(t *testing.T) {
	// 23:30 in UTC-05:00 is 04:30 the next day in UTC
	zone := time.FixedZone("EST", -5*60*60)
	s := newTestChatService(time.Date(2026, 1, 10, 23, 30, 0, 0, zone))

	resp := s.Reply("hello")
	if resp.Timestamp != "2026-01-11T04:30:00.000000Z" {
		t.Fatalf("expected UTC timestamp, got %q", resp.Timestamp)
	}
}
