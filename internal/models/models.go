package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a Telegram user the bot has seen
type User struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"index" json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `gorm:"default:'en'" json:"language_code"`
	IsBot        bool   `gorm:"default:false" json:"is_bot"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Messages []Message `json:"messages,omitempty"`
}

// Chat represents a private or group conversation
type Chat struct {
	ID                  int64  `gorm:"primaryKey" json:"id"`
	Type                string `gorm:"default:'private'" json:"type"`
	Title               string `json:"title"`
	Username            string `gorm:"index" json:"username"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	AllMembersAreAdmins bool   `gorm:"default:false" json:"all_members_are_admins"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Members  []ChatMember `json:"members,omitempty"`
	Messages []Message    `json:"messages,omitempty"`
}

// ChatMember links users to the chats they participate in
type ChatMember struct {
	ChatID   int64     `gorm:"primaryKey" json:"chat_id"`
	UserID   int64     `gorm:"primaryKey" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message stores an archived chat message (timestamps in UTC)
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageID int64     `gorm:"index" json:"message_id"`
	ChatID    int64     `gorm:"index" json:"chat_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	Text      string    `json:"text"`
	Date      time.Time `gorm:"index" json:"date"` // Always UTC

	// Audio attachment metadata, empty for plain text messages
	AudioFileID   string `json:"audio_file_id"`
	AudioDuration string `json:"audio_duration"` // m:s as reported by the client
	AudioMimeType string `json:"audio_mime_type"`
	AudioFileSize int64  `json:"audio_file_size"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `json:"user,omitempty"`
	Chat Chat `json:"chat,omitempty"`
}

// Update tracks every received update envelope for dispatch auditing
type Update struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UpdateID  int64        `gorm:"index" json:"update_id"`
	MessageID int64        `gorm:"index" json:"message_id"`
	ChatID    int64        `json:"chat_id"`
	Status    UpdateStatus `gorm:"default:1" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

type UpdateStatus int

const (
	UpdateReceived UpdateStatus = iota + 1
	UpdateProcessed
	UpdateFailed
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Chat{},
		&ChatMember{},
		&Message{},
		&Update{},
	)
}
