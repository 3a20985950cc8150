// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evamaria/fanchat-backend/internal/domain"
)

// CreateMessage inserts a new immutable message row with a server-assigned
// UTC timestamp. Takes a bare *gorm.DB so it can participate in the
// send-message transaction.
func CreateMessage(db *gorm.DB, chatID, senderID, senderEmail, text string, isAdmin bool, imageURL *string) (*domain.Message, error) {
	m := &domain.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		SenderID:    senderID,
		SenderEmail: senderEmail,
		Text:        text,
		IsAdmin:     isAdmin,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListMessages returns the full message log for a chat ordered
// deterministically (CreatedAt ASC, ID ASC).
func ListMessages(db *gorm.DB, chatID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListRecentMessages returns the newest `limit` messages of a chat in
// display order (oldest of the window first). Used to build the bounded
// conversation window handed to the persona responder.
func ListRecentMessages(db *gorm.DB, chatID string, limit int) ([]domain.Message, error) {
	var desc []domain.Message
	q := db.Where("chat_id = ?", chatID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&desc).Error; err != nil {
		return nil, err
	}
	// reverse to ASC (oldest -> newest)
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	return desc, nil
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, chatID string) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM messages WHERE chat_id = ?", chatID).Scan(&total).Error
	return total, err
}

// GetMessage fetches a message by ID.
func GetMessage(db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
