// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Chat model.
//
// Functions:
//
//   - CreateChat(ctx, db, userID, userEmail) -> *domain.Chat, error
//     Inserts a new Chat row with empty preview fields and both unread
//     flags false. Returns ErrDuplicate when the user already has a chat.
//
//   - GetChat(ctx, db, id) -> *domain.Chat, error
//     Fetches a single chat by ID, or ErrNotFound if missing.
//
//   - GetChatByUserID(ctx, db, userID) -> *domain.Chat, error
//     Fetches the user's unique chat, or ErrNotFound on first contact.
//
//   - ListChats(ctx, db) -> []domain.Chat, error
//     The operator inbox: every chat ordered by last-message time descending.
//
//   - UpdateChatPreview(db, id, text, at, fromAdmin) -> error
//     Refreshes the denormalized preview and rewrites both unread flags:
//     the receiving audience's is raised, the sender's own is reset.
//
//   - MarkChatRead(ctx, db, id, asAdmin) -> error
//     Clears exactly one of the two unread flags.
//
// This repository is wrapped by services.ChatService, which owns the
// transactional composition of message insert + preview update.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/domain"
)

// CreateChat inserts the unique chat row for userID with empty preview
// fields and both unread flags false. The unique index on user_id makes
// concurrent first contacts collapse onto one row: losers get ErrDuplicate
// and should refetch with GetChatByUserID.
func CreateChat(ctx context.Context, db *gorm.DB, userID, userEmail string) (*domain.Chat, error) {
	now := time.Now().UTC()
	c := &domain.Chat{
		ID:              uuid.NewString(),
		UserID:          userID,
		UserEmail:       userEmail,
		LastMessage:     "",
		LastMessageTime: now,
		CreatedAt:       now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetChat fetches a chat by its ID, or ErrNotFound if missing.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetChatByUserID fetches the single chat owned by userID, or ErrNotFound
// when the user has not opened a conversation yet.
func GetChatByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns the whole chat directory ordered by last-message time
// descending (newest conversation first). Operator inbox only.
func ListChats(ctx context.Context, db *gorm.DB) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Order("last_message_time desc").
		Find(&out).Error
	return out, err
}

// CountChats returns the total number of chats.
func CountChats(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Chat{}).Count(&total).Error
	return total, err
}

// ListChatsPage returns a page of the directory ordered by last-message
// time descending. The caller computes offset and limit.
func ListChatsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Order("last_message_time desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateChatPreview refreshes the denormalized preview fields after a
// message insert and rewrites both unread flags: the receiving audience's
// flag is raised and the sender's own flag is reset, so sending doubles as
// an implicit read of everything up to that point. Takes a bare *gorm.DB so
// it can run inside the same transaction as the insert.
func UpdateChatPreview(db *gorm.DB, id, text string, at time.Time, fromAdmin bool) error {
	res := db.Model(&domain.Chat{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_message":      text,
			"last_message_time": at,
			"unread_by_admin":   !fromAdmin,
			"unread_by_user":    fromAdmin,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkChatRead clears exactly one unread flag: the operator's when asAdmin
// is true, the end-user's otherwise. The other flag is never altered.
func MarkChatRead(ctx context.Context, db *gorm.DB, id string, asAdmin bool) error {
	col := "unread_by_user"
	if asAdmin {
		col = "unread_by_admin"
	}
	res := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", id).
		Update(col, false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
