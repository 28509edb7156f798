package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/valpere/govorun/internal/models"
)

type UserService struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zerolog.Logger
}

func NewUserService(db *gorm.DB, rdb *redis.Client, logger *zerolog.Logger) *UserService {
	return &UserService{
		db:     db,
		redis:  rdb,
		logger: logger,
	}
}

// SystemStats aggregates counters shown by the /stats command
type SystemStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	TotalChats    int64 `json:"total_chats"`
	TotalMessages int64 `json:"total_messages"`
	Messages24h   int64 `json:"messages_24h"`
}

func (s *UserService) RegisterUser(ctx context.Context, tgUser *gotgbot.User) error {
	user := &models.User{
		ID:           tgUser.Id,
		Username:     tgUser.Username,
		FirstName:    tgUser.FirstName,
		LastName:     tgUser.LastName,
		LanguageCode: tgUser.LanguageCode,
		IsBot:        tgUser.IsBot,
		IsActive:     true,
	}

	result := s.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		// If user exists, update the information
		result = s.db.WithContext(ctx).Model(user).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_at": time.Now(),
		})
	}

	if result.Error == nil {
		s.invalidateCache(ctx, user.ID)
	}

	return result.Error
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	// Try cache first
	cacheKey := fmt.Sprintf("user:%d", userID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	// Get from database
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}

	// Cache for 1 hour
	if s.redis != nil {
		userJSON, _ := json.Marshal(user)
		s.redis.Set(ctx, cacheKey, userJSON, time.Hour)
	}

	return &user, nil
}

// GetActiveUsers returns all active users
func (s *UserService) GetActiveUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&users).Error
	return users, err
}

func (s *UserService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}

	s.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers)
	s.db.WithContext(ctx).Model(&models.Chat{}).Count(&stats.TotalChats)
	s.db.WithContext(ctx).Model(&models.Message{}).Count(&stats.TotalMessages)

	yesterday := time.Now().AddDate(0, 0, -1)
	s.db.WithContext(ctx).Model(&models.Message{}).Where("created_at > ?", yesterday).Count(&stats.Messages24h)

	return stats, nil
}

func (s *UserService) invalidateCache(ctx context.Context, userID int64) {
	if s.redis == nil {
		return
	}
	cacheKey := fmt.Sprintf("user:%d", userID)
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Debug().Err(err).Int64("user_id", userID).Msg("Failed to invalidate user cache")
	}
}
