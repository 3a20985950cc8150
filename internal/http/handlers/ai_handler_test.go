package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/persona"
)

func TestAIChat_InvalidMessagesFormat(t *testing.T) {
	h := testHandlers(&fakeAccounts{}, &fakeChats{}, &fakeResponder{})

	cases := []any{
		map[string]any{"language": "en"},                                   // messages missing
		map[string]any{"messages": "not an array", "language": "en"},       // wrong type
		map[string]any{"messages": map[string]any{"role": "user"}},         // object, not array
		map[string]any{"messages": []any{map[string]any{"role": 1}}, "x": 1}, // malformed turn
	}
	for i, body := range cases {
		w := doJSON(t, h.AIChat, http.MethodPost, "/ai/chat", body, asUser)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d: %s", i, w.Code, w.Body.String())
		}
		var resp AIErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if resp.Error != "Invalid messages format" {
			t.Fatalf("case %d: wrong error message: %q", i, resp.Error)
		}
	}
}

func TestAIChat_NotConfigured(t *testing.T) {
	h := testHandlers(&fakeAccounts{}, &fakeChats{}, &fakeResponder{err: persona.ErrNotConfigured})

	body := map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
		"language": "en",
	}
	w := doJSON(t, h.AIChat, http.MethodPost, "/ai/chat", body, asUser)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp AIErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "OpenAI API key not configured" {
		t.Fatalf("wrong error message: %q", resp.Error)
	}
}

func TestAIChat_UpstreamFailure(t *testing.T) {
	h := testHandlers(&fakeAccounts{}, &fakeChats{}, &fakeResponder{err: persona.ErrUpstream})

	body := map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	}
	w := doJSON(t, h.AIChat, http.MethodPost, "/ai/chat", body, asUser)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp AIErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Failed to generate AI response" {
		t.Fatalf("wrong error message: %q", resp.Error)
	}
}

func TestAIChat_SuccessPersistsAssistantMessage(t *testing.T) {
	img := "https://images.example.com/out.png"
	responder := &fakeResponder{reply: &persona.Reply{Text: "hey you", ImageURL: &img}}
	chats := &fakeChats{}
	h := testHandlers(&fakeAccounts{}, chats, responder)

	body := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": "hi"},
			{"role": "user", "content": "miss me?"},
		},
		"language": "ro",
	}
	w := doJSON(t, h.AIChat, http.MethodPost, "/ai/chat", body, asUser)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AIChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "hey you" {
		t.Fatalf("unexpected response text: %q", resp.Response)
	}
	if resp.ImageURL == nil || *resp.ImageURL != img {
		t.Fatalf("image url must pass through: %+v", resp.ImageURL)
	}

	if responder.gotLocale != "ro" || len(responder.gotHistory) != 3 {
		t.Fatalf("responder input wrong: locale=%q history=%d", responder.gotLocale, len(responder.gotHistory))
	}

	// The reply lands in the caller's support chat on the admin side.
	if chats.sendSenderID != domain.SenderAssistant || !chats.sendIsAdmin {
		t.Fatalf("persisted reply must be the assistant sender on the admin side: %q admin=%v",
			chats.sendSenderID, chats.sendIsAdmin)
	}
	if chats.sendText != "hey you" || chats.sendImageURL == nil || *chats.sendImageURL != img {
		t.Fatalf("persisted reply must carry text and image: %q %v", chats.sendText, chats.sendImageURL)
	}
}

func TestAIChat_PersistFailureStillReturnsReply(t *testing.T) {
	responder := &fakeResponder{reply: &persona.Reply{Text: "still here"}}
	chats := &fakeChats{sendErr: errDB}
	h := testHandlers(&fakeAccounts{}, chats, responder)

	body := map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	}
	w := doJSON(t, h.AIChat, http.MethodPost, "/ai/chat", body, asUser)
	if w.Code != http.StatusOK {
		t.Fatalf("persistence is best-effort, expected 200, got %d", w.Code)
	}
}
