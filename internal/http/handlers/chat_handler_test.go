package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/services"
)

func TestSignup_ReturnsTokenAndProfile(t *testing.T) {
	accounts := &fakeAccounts{}
	h := testHandlers(accounts, &fakeChats{}, &fakeResponder{})

	w := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		map[string]string{"email": "fan@example.com", "password": "hunter22"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}
	if resp.Profile.Email != "fan@example.com" {
		t.Fatalf("unexpected profile: %+v", resp.Profile)
	}
	if accounts.signUpEmail != "fan@example.com" {
		t.Fatalf("service got wrong email: %q", accounts.signUpEmail)
	}
}

func TestSignup_EmailTaken_Conflict(t *testing.T) {
	h := testHandlers(&fakeAccounts{signUpErr: services.ErrEmailTaken}, &fakeChats{}, &fakeResponder{})

	w := doJSON(t, h.Signup, http.MethodPost, "/auth/signup",
		map[string]string{"email": "fan@example.com", "password": "hunter22"}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != CodeEmailTaken {
		t.Fatalf("wrong error code: %q", resp.Code)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h := testHandlers(&fakeAccounts{authErr: services.ErrInvalidCredentials}, &fakeChats{}, &fakeResponder{})

	w := doJSON(t, h.Login, http.MethodPost, "/auth/login",
		map[string]string{"email": "fan@example.com", "password": "nope"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSendChatMessage_CreatesUserMessage(t *testing.T) {
	chats := &fakeChats{}
	h := testHandlers(&fakeAccounts{}, chats, &fakeResponder{})

	w := doJSON(t, h.SendChatMessage, http.MethodPost, "/chat/messages",
		map[string]string{"text": "my payment failed"}, asUser)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if chats.sendSenderID != "u1" || chats.sendIsAdmin {
		t.Fatalf("user sends must come from the user side: %q admin=%v", chats.sendSenderID, chats.sendIsAdmin)
	}
	if chats.sendImageURL != nil {
		t.Fatalf("user messages never carry generated images")
	}
}

func TestSendChatMessage_MissingText(t *testing.T) {
	h := testHandlers(&fakeAccounts{}, &fakeChats{}, &fakeResponder{})

	w := doJSON(t, h.SendChatMessage, http.MethodPost, "/chat/messages", map[string]string{}, asUser)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMarkChatRead_NoChatYet_NoContent(t *testing.T) {
	h := testHandlers(&fakeAccounts{}, &fakeChats{chatErr: services.ErrChatNotFound}, &fakeResponder{})

	w := doJSON(t, h.MarkChatRead, http.MethodPost, "/chat/read", nil, asUser)
	if w.Code != http.StatusNoContent {
		t.Fatalf("marking an unopened chat read is a no-op, got %d", w.Code)
	}
}

func TestMarkChatRead_ClearsUserFlagOnly(t *testing.T) {
	chats := &fakeChats{}
	h := testHandlers(&fakeAccounts{}, chats, &fakeResponder{})

	w := doJSON(t, h.MarkChatRead, http.MethodPost, "/chat/read", nil, asUser)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if chats.markedChatID != "c1" || chats.markedAsAdmin {
		t.Fatalf("end-user read must clear the user flag: %q asAdmin=%v", chats.markedChatID, chats.markedAsAdmin)
	}
}

func TestAdminSendMessage_UsesSharedAdminSender(t *testing.T) {
	chats := &fakeChats{}
	h := testHandlers(&fakeAccounts{}, chats, &fakeResponder{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/chats/c9/messages",
		jsonBody(t, map[string]string{"text": "hello from support"}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	for k, v := range map[string]string{"userID": "admin-uid", "userRole": domain.RoleAdmin} {
		c.Set(k, v)
	}
	h.AdminSendMessage(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if chats.sendChatID != "c9" {
		t.Fatalf("wrong chat id: %q", chats.sendChatID)
	}
	if chats.sendSenderID != domain.SenderAdmin || !chats.sendIsAdmin {
		t.Fatalf("operator replies use the shared admin sender: %q admin=%v", chats.sendSenderID, chats.sendIsAdmin)
	}
}

func TestAdminMarkRead_ClearsAdminFlag(t *testing.T) {
	chats := &fakeChats{}
	h := testHandlers(&fakeAccounts{}, chats, &fakeResponder{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/chats/c9/read", nil)
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	h.AdminMarkRead(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if chats.markedChatID != "c9" || !chats.markedAsAdmin {
		t.Fatalf("operator read must clear the admin flag: %q asAdmin=%v", chats.markedChatID, chats.markedAsAdmin)
	}
}

func TestAdminListChats_PaginationEnvelope(t *testing.T) {
	chats := &fakeChats{
		chats: []domain.Chat{{ID: "c1"}, {ID: "c2"}},
		total: 42,
	}
	h := testHandlers(&fakeAccounts{}, chats, &fakeResponder{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/chats?page=2&page_size=2", nil)
	h.AdminListChats(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ChatListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chats) != 2 || resp.Pagination.Total != 42 || resp.Pagination.Page != 2 || resp.Pagination.TotalPages != 21 {
		t.Fatalf("unexpected envelope: %+v", resp.Pagination)
	}
}
