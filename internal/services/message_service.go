package services

import (
	"context"
	"fmt"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/valpere/govorun/internal/models"
	"github.com/valpere/govorun/pkg/metrics"
)

// MessageService archives conversation records. It is the persistence
// collaborator behind the fixture harness as well as the message handlers.
type MessageService struct {
	db      *gorm.DB
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewMessageService(db *gorm.DB, logger *zerolog.Logger, m *metrics.Metrics) *MessageService {
	return &MessageService{
		db:      db,
		logger:  logger,
		metrics: m,
	}
}

// IsConnected reports whether the backing store is reachable
func (s *MessageService) IsConnected() bool {
	if s.db == nil {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// InsertMessageRequest persists a message together with its update-tracking
// row. Both rows are written in one transaction; the caller is responsible
// for persisting the sender and chat separately.
func (s *MessageService) InsertMessageRequest(ctx context.Context, msg *gotgbot.Message) error {
	record := messageRecord(msg)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Create(&models.Update{
			UpdateID:  msg.MessageId,
			MessageID: msg.MessageId,
			ChatID:    msg.Chat.Id,
			Status:    models.UpdateReceived,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("insert message request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncMessagesArchived(messageKind(msg))
	}
	return nil
}

// InsertUser upserts the message sender and its chat as linked records
func (s *MessageService) InsertUser(ctx context.Context, user *gotgbot.User, chat *gotgbot.Chat) error {
	if user != nil {
		record := &models.User{
			ID:           user.Id,
			Username:     user.Username,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			LanguageCode: user.LanguageCode,
			IsBot:        user.IsBot,
			IsActive:     true,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(record).Error
		if err != nil {
			return fmt.Errorf("upsert user %d: %w", user.Id, err)
		}
	}

	if chat != nil {
		record := &models.Chat{
			ID:        chat.Id,
			Type:      chat.Type,
			Title:     chat.Title,
			Username:  chat.Username,
			FirstName: chat.FirstName,
			LastName:  chat.LastName,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(record).Error
		if err != nil {
			return fmt.Errorf("upsert chat %d: %w", chat.Id, err)
		}
	}

	if user != nil && chat != nil {
		member := &models.ChatMember{
			ChatID:   chat.Id,
			UserID:   user.Id,
			JoinedAt: time.Now().UTC(),
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			DoNothing: true,
		}).Create(member).Error
		if err != nil {
			return fmt.Errorf("upsert chat member: %w", err)
		}
	}

	return nil
}

// RecordIncoming archives an incoming message and its participants. Handlers
// call this for every message the dispatcher passes through.
func (s *MessageService) RecordIncoming(ctx context.Context, msg *gotgbot.Message) error {
	if err := s.InsertMessageRequest(ctx, msg); err != nil {
		return err
	}
	return s.InsertUser(ctx, msg.From, &msg.Chat)
}

// RecentMessages returns the latest archived messages for a chat
func (s *MessageService) RecentMessages(ctx context.Context, chatID int64, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("date DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func messageRecord(msg *gotgbot.Message) *models.Message {
	record := &models.Message{
		MessageID: msg.MessageId,
		ChatID:    msg.Chat.Id,
		Text:      msg.Text,
		Date:      time.Unix(msg.Date, 0).UTC(),
	}
	if msg.From != nil {
		record.UserID = msg.From.Id
	}
	if msg.Audio != nil {
		record.AudioFileID = msg.Audio.FileId
		record.AudioDuration = fmt.Sprintf("%d:%02d", msg.Audio.Duration/60, msg.Audio.Duration%60)
		record.AudioMimeType = msg.Audio.MimeType
		record.AudioFileSize = msg.Audio.FileSize
	}
	return record
}

func messageKind(msg *gotgbot.Message) string {
	if msg.Audio != nil {
		return "audio"
	}
	return "text"
}
