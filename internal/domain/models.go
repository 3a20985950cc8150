// Package domain defines the persistence models for user profiles, chats,
// and messages. These types are mapped with GORM and form the core data
// layer of the fan-site backend.
package domain

import "time"

// Sender identities recorded on operator-side messages. Real operator
// replies and persona-generated replies share the same origin flag but
// keep distinct sender ids.
const (
	SenderAdmin     = "admin"
	SenderAssistant = "assistant"
)

// Roles a profile can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile is the account record for one registered user. It is created
// right after sign-up, mutated only by the avatar and password flows, and
// deleted as a whole when the account is deleted.
//
// Fields:
//   - UID: stable UUID primary key, also the key of the user's avatar object.
//   - Email: unique login identity.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - ProfilePicture: public URL of the avatar, nil until first upload.
//   - CreatedAt: set once at sign-up.
type UserProfile struct {
	UID            string    `json:"uid"             gorm:"type:char(36);primaryKey"`
	Email          string    `json:"email"           gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash   string    `json:"-"               gorm:"type:varchar(128);not null"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	ProfilePicture *string   `json:"profilePicture,omitempty" gorm:"type:varchar(512)"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "users" }

// Chat is the one conversation an end-user has with the operator side.
// The unique index on UserID closes the lookup-then-create race: at most
// one chat can ever exist per user, and concurrent first contacts collapse
// onto the same row.
//
// LastMessage/LastMessageTime are a denormalized preview of the newest
// message, maintained in the same transaction as the message insert.
// The two unread flags are independent: each send raises the flag of the
// audience that did not send, and "mark as read" clears exactly one.
type Chat struct {
	ID              string    `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID          string    `json:"userId"          gorm:"type:char(36);not null;uniqueIndex:ux_chat_user"`
	UserEmail       string    `json:"userEmail"       gorm:"type:varchar(255);not null"`
	LastMessage     string    `json:"lastMessage"     gorm:"type:text;not null;default:''"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadByAdmin   bool      `json:"unreadByAdmin"   gorm:"not null;default:false"`
	UnreadByUser    bool      `json:"unreadByUser"    gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// Message is a single immutable utterance within a chat. There is no edit
// or delete operation; display order is CreatedAt ascending with ID as a
// tiebreaker for same-instant writes.
//
// IsAdmin marks operator-side origin: true for both real operator replies
// (SenderID == SenderAdmin) and persona replies (SenderID == SenderAssistant).
// ImageURL carries the optional generated image attached to a persona reply.
type Message struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ChatID      string    `json:"chatId"      gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	SenderID    string    `json:"senderId"    gorm:"type:char(36);not null"`
	SenderEmail string    `json:"senderEmail" gorm:"type:varchar(255);not null"`
	Text        string    `json:"text"        gorm:"type:text;not null"`
	IsAdmin     bool      `json:"isAdmin"     gorm:"not null;default:false"`
	ImageURL    *string   `json:"imageUrl,omitempty" gorm:"type:varchar(512)"`
	CreatedAt   time.Time `json:"timestamp"   gorm:"index:idx_chat_msgs,priority:2"`

	// Chat is the parent conversation. Messages are cascade-deleted
	// if their chat is removed.
	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
