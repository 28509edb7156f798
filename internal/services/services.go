// Package services provides the business logic layer for the Govorun bot.
// Each service encapsulates one domain concern; all of them are initialized
// once during startup and are safe for concurrent use.
package services

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/valpere/govorun/internal/config"
	"github.com/valpere/govorun/pkg/metrics"
)

// Services is the central container for all business logic services.
type Services struct {
	User    *UserService    // User registration, cached lookups, statistics
	Message *MessageService // Message/update archival and conversation records
}

func New(db *gorm.DB, rdb *redis.Client, cfg *config.Config, logger *zerolog.Logger, m *metrics.Metrics) *Services {
	return &Services{
		User:    NewUserService(db, rdb, logger),
		Message: NewMessageService(db, logger, m),
	}
}
