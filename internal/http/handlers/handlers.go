package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/persona"
	"github.com/evamaria/fanchat-backend/internal/realtime"
)

// AccountService is the account surface the handlers depend on.
type AccountService interface {
	SignUp(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Authenticate(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Profile(ctx context.Context, uid string) (*domain.UserProfile, error)
	ChangePassword(ctx context.Context, uid, current, next, confirm string) error
	DeleteAccount(ctx context.Context, uid, password string) error
	UpdateAvatar(ctx context.Context, uid string, data []byte) (string, error)
}

// ChatService is the chat surface the handlers depend on.
type ChatService interface {
	GetOrCreateChat(ctx context.Context, userID, userEmail string) (*domain.Chat, error)
	ChatForUser(ctx context.Context, userID string) (*domain.Chat, error)
	Chat(ctx context.Context, chatID string) (*domain.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID, senderEmail, text string, isAdmin bool, imageURL *string) (*domain.Message, error)
	MarkChatAsRead(ctx context.Context, chatID string, asAdmin bool) error
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	RecentWindow(ctx context.Context, chatID string) ([]domain.Message, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	ListChatsPage(ctx context.Context, page, pageSize int) ([]domain.Chat, int64, error)
}

// Responder produces persona replies for the AI endpoint.
type Responder interface {
	Reply(ctx context.Context, history []persona.Turn, locale string) (*persona.Reply, error)
}

// Handlers wires services into Gin handler methods. One instance serves
// all routes.
type Handlers struct {
	accounts AccountService
	chats    ChatService
	respond  Responder
	hub      *realtime.Hub
	db       *gorm.DB

	tokenSecret string
	tokenTTL    time.Duration
	idemTTL     time.Duration
}

// Options bundles the dependencies and settings for New.
type Options struct {
	Accounts AccountService
	Chats    ChatService
	Respond  Responder
	Hub      *realtime.Hub
	DB       *gorm.DB

	TokenSecret    string
	TokenTTL       time.Duration
	IdempotencyTTL time.Duration
}

// New constructs the handler set.
func New(opts Options) *Handlers {
	return &Handlers{
		accounts:    opts.Accounts,
		chats:       opts.Chats,
		respond:     opts.Respond,
		hub:         opts.Hub,
		db:          opts.DB,
		tokenSecret: opts.TokenSecret,
		tokenTTL:    opts.TokenTTL,
		idemTTL:     opts.IdempotencyTTL,
	}
}
