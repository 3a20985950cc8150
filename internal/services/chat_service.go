// Package services – ChatService
//
// This file implements the ChatService, the single writer of Chat and
// Message data. It creates or finds a user's unique chat, appends immutable
// messages, keeps the denormalized chat preview and unread flags in step
// with the newest message, and pushes full state snapshots to the realtime
// hub after every committed write.
//
// The message insert and the preview update run in one GORM transaction, so
// a subscriber never observes the new message without the updated preview
// (or vice versa).
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// chat/user identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/domain"
	"github.com/evamaria/fanchat-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Topic names used when publishing snapshots to the hub.
const (
	TopicChats      = "chats"
	TopicChatPrefix = "chat:"
)

// Notifier receives full-state snapshots after each committed write.
// realtime.Hub satisfies this; a nil Notifier disables live updates.
type Notifier interface {
	Publish(topic string, payload any)
}

// MessagesSnapshot is the payload pushed to "chat:<id>" subscribers:
// the complete, ascending-ordered message log of one chat.
type MessagesSnapshot struct {
	Type     string           `json:"type"` // "messages"
	ChatID   string           `json:"chatId"`
	Messages []domain.Message `json:"messages"`
}

// DirectorySnapshot is the payload pushed to "chats" subscribers:
// the complete chat directory ordered by last-message time descending.
type DirectorySnapshot struct {
	Type  string        `json:"type"` // "chats"
	Chats []domain.Chat `json:"chats"`
}

// ChatService mediates all reads and writes of conversation state.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives snapshots after each write; may be nil.
	Hub Notifier

	// MaxTextRunes caps message length; <= 0 disables the cap.
	MaxTextRunes int
	// HistoryWindow bounds the conversation slice handed to the persona
	// responder; <= 0 falls back to 20.
	HistoryWindow int
}

// NewChatService constructs a ChatService with the defaults used in production.
func NewChatService(db *gorm.DB, hub Notifier) *ChatService {
	return &ChatService{
		DB:            db,
		Hub:           hub,
		MaxTextRunes:  2000,
		HistoryWindow: 20,
	}
}

// GetOrCreateChat returns the user's unique chat, creating it on first
// contact. Concurrent first contacts are safe: the unique index on user_id
// makes losing writers refetch the winner's row.
func (s *ChatService) GetOrCreateChat(ctx context.Context, userID, userEmail string) (*domain.Chat, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "GetOrCreateChat",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	chat, err := repo.GetChatByUserID(ctx, s.DB, userID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	chat, err = repo.CreateChat(ctx, s.DB, userID, userEmail)
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the first-contact race; the winner's chat is ours too.
		return repo.GetChatByUserID(ctx, s.DB, userID)
	}
	if err != nil {
		return nil, err
	}
	s.notifyDirectory(ctx)
	return chat, nil
}

// ChatForUser returns the user's chat without creating one; first-time
// visitors get ErrChatNotFound.
func (s *ChatService) ChatForUser(ctx context.Context, userID string) (*domain.Chat, error) {
	chat, err := repo.GetChatByUserID(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return chat, err
}

// Chat returns a chat by id; ErrChatNotFound when missing.
func (s *ChatService) Chat(ctx context.Context, chatID string) (*domain.Chat, error) {
	chat, err := repo.GetChat(ctx, s.DB, chatID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return chat, err
}

// SendMessage validates and appends an immutable message, then updates the
// parent chat's preview and both unread flags: the receiving audience's is
// raised, the sender's side is reset. Both writes commit in one
// transaction. imageURL may be nil; it is only set on persona replies that
// carry a generated image.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, senderEmail, text string, isAdmin bool, imageURL *string) (*domain.Message, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("sender.id", senderID),
			attribute.Bool("sender.admin", isAdmin),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return nil, ErrTooLong
	}

	if _, err := repo.GetChat(ctx, s.DB, chatID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	var msg *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMessage(tx, chatID, senderID, senderEmail, text, isAdmin, imageURL)
		if err != nil {
			return err
		}
		msg = m
		return repo.UpdateChatPreview(tx, chatID, text, m.CreatedAt, isAdmin)
	})
	if err != nil {
		return nil, err
	}

	s.notifyChat(ctx, chatID)
	s.notifyDirectory(ctx)
	return msg, nil
}

// MarkChatAsRead clears the unread flag of one audience and leaves the
// other untouched.
func (s *ChatService) MarkChatAsRead(ctx context.Context, chatID string, asAdmin bool) error {
	err := repo.MarkChatRead(ctx, s.DB, chatID, asAdmin)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrChatNotFound
	}
	if err != nil {
		return err
	}
	s.notifyDirectory(ctx)
	return nil
}

// ListMessages returns the full, ascending-ordered message log of a chat.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	if _, err := repo.GetChat(ctx, s.DB, chatID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	msgs, err := repo.ListMessages(s.DB.WithContext(ctx), chatID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// RecentWindow returns the newest HistoryWindow messages in display order,
// the bounded slice handed to the persona responder.
func (s *ChatService) RecentWindow(ctx context.Context, chatID string) ([]domain.Message, error) {
	limit := s.HistoryWindow
	if limit <= 0 {
		limit = 20
	}
	return repo.ListRecentMessages(s.DB.WithContext(ctx), chatID, limit)
}

// ListChats returns the operator inbox ordered by last-message time descending.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	chats, err := repo.ListChats(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}

// ListChatsPage returns a page of the operator inbox and the total count.
func (s *ChatService) ListChatsPage(ctx context.Context, page, pageSize int) ([]domain.Chat, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountChats(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Chat{}, 0, nil
	}
	items, err := repo.ListChatsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// notifyChat pushes the full message log of chatID to its subscribers.
// Best effort: a failed snapshot load drops the notification, never the write.
func (s *ChatService) notifyChat(ctx context.Context, chatID string) {
	if s.Hub == nil {
		return
	}
	msgs, err := repo.ListMessages(s.DB.WithContext(ctx), chatID)
	if err != nil {
		return
	}
	s.Hub.Publish(TopicChatPrefix+chatID, MessagesSnapshot{
		Type:     "messages",
		ChatID:   chatID,
		Messages: msgs,
	})
}

// notifyDirectory pushes the full chat directory to inbox subscribers.
func (s *ChatService) notifyDirectory(ctx context.Context) {
	if s.Hub == nil {
		return
	}
	chats, err := repo.ListChats(ctx, s.DB)
	if err != nil {
		return
	}
	s.Hub.Publish(TopicChats, DirectorySnapshot{Type: "chats", Chats: chats})
}
