package helpers

import (
	"os"

	"github.com/valpere/govorun/internal/config"
)

// GetTestConfig returns a configuration suitable for testing
func GetTestConfig() *config.Config {
	return &config.Config{
		Bot: config.BotConfig{
			Token:       "test_bot_token",
			Debug:       true,
			WebhookPort: 8081,
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "test_user",
			Password: "test_password",
			Name:     "test_db",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			Host: "localhost",
			Port: 6379,
			DB:   1, // Use different DB for tests
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
		Metrics: config.MetricsConfig{
			Port: 2113, // Different port for tests
		},
	}
}

// GetTestConfigFromEnv returns test config with environment overrides
func GetTestConfigFromEnv() *config.Config {
	cfg := GetTestConfig()

	if token := os.Getenv("TEST_TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}

	if dbHost := os.Getenv("TEST_DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}

	if redisHost := os.Getenv("TEST_REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}

	return cfg
}
