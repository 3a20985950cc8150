package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/persona"
)

func init() { gin.SetMode(gin.TestMode) }

// ----- Fakes -----

type fakeAccounts struct {
	profile    *domain.UserProfile
	profileErr error

	signUpEmail string
	signUpErr   error

	authErr error

	changeErr error
	deleteErr error

	avatarURL string
	avatarErr error
}

func (f *fakeAccounts) SignUp(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	f.signUpEmail = email
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.UserProfile{UID: "u1", Email: email, Role: domain.RoleUser}, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &domain.UserProfile{UID: "u1", Email: email, Role: domain.RoleUser}, nil
}

func (f *fakeAccounts) Profile(ctx context.Context, uid string) (*domain.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return &domain.UserProfile{UID: uid, Email: "fan@example.com", Role: domain.RoleUser}, nil
}

func (f *fakeAccounts) ChangePassword(ctx context.Context, uid, current, next, confirm string) error {
	return f.changeErr
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, uid, password string) error {
	return f.deleteErr
}

func (f *fakeAccounts) UpdateAvatar(ctx context.Context, uid string, data []byte) (string, error) {
	if f.avatarErr != nil {
		return "", f.avatarErr
	}
	if f.avatarURL != "" {
		return f.avatarURL, nil
	}
	return "/avatars/" + uid + ".png", nil
}

type fakeChats struct {
	chat    *domain.Chat
	chatErr error

	sendChatID    string
	sendSenderID  string
	sendIsAdmin   bool
	sendText      string
	sendImageURL  *string
	sendErr       error
	sentMessage   *domain.Message
	markedChatID  string
	markedAsAdmin bool
	markErr       error

	messages []domain.Message
	chats    []domain.Chat
	total    int64
}

func (f *fakeChats) GetOrCreateChat(ctx context.Context, userID, userEmail string) (*domain.Chat, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.chat != nil {
		return f.chat, nil
	}
	return &domain.Chat{ID: "c1", UserID: userID, UserEmail: userEmail}, nil
}

func (f *fakeChats) ChatForUser(ctx context.Context, userID string) (*domain.Chat, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.chat != nil {
		return f.chat, nil
	}
	return &domain.Chat{ID: "c1", UserID: userID}, nil
}

func (f *fakeChats) Chat(ctx context.Context, chatID string) (*domain.Chat, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &domain.Chat{ID: chatID, UserID: "u1"}, nil
}

func (f *fakeChats) SendMessage(ctx context.Context, chatID, senderID, senderEmail, text string, isAdmin bool, imageURL *string) (*domain.Message, error) {
	f.sendChatID, f.sendSenderID, f.sendText = chatID, senderID, text
	f.sendIsAdmin, f.sendImageURL = isAdmin, imageURL
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	m := &domain.Message{ID: "m1", ChatID: chatID, SenderID: senderID, Text: text, IsAdmin: isAdmin, ImageURL: imageURL}
	f.sentMessage = m
	return m, nil
}

func (f *fakeChats) MarkChatAsRead(ctx context.Context, chatID string, asAdmin bool) error {
	f.markedChatID, f.markedAsAdmin = chatID, asAdmin
	return f.markErr
}

func (f *fakeChats) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeChats) RecentWindow(ctx context.Context, chatID string) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeChats) ListChats(ctx context.Context) ([]domain.Chat, error) {
	return f.chats, nil
}

func (f *fakeChats) ListChatsPage(ctx context.Context, page, pageSize int) ([]domain.Chat, int64, error) {
	return f.chats, f.total, nil
}

type fakeResponder struct {
	gotHistory []persona.Turn
	gotLocale  string
	reply      *persona.Reply
	err        error
}

func (f *fakeResponder) Reply(ctx context.Context, history []persona.Turn, locale string) (*persona.Reply, error) {
	f.gotHistory, f.gotLocale = history, locale
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

// ----- Helpers -----

func testHandlers(accounts *fakeAccounts, chats *fakeChats, respond *fakeResponder) *Handlers {
	return New(Options{
		Accounts:    accounts,
		Chats:       chats,
		Respond:     respond,
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	})
}

func doJSON(t *testing.T, handler gin.HandlerFunc, method, target string, body any, identity map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range identity {
		c.Set(k, v)
	}
	handler(c)
	// Handlers that finish with c.Status (204 responses) rely on the engine
	// to flush the header; invoked directly we must flush ourselves.
	c.Writer.WriteHeaderNow()
	return w
}

func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return &buf
}

var asUser = map[string]string{middleware.CtxUserID: "u1", middleware.CtxUserRole: domain.RoleUser}

var errDB = errors.New("db down")
