package helpers

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valpere/govorun/internal/config"
)

var (
	// ErrConnection reports that the fixture store could not be reached
	ErrConnection = errors.New("fixture store connection failed")
	// ErrStorage reports a delete rejected by the backing store
	ErrStorage = errors.New("fixture store delete rejected")
)

// resetOrder lists every fixture table, children strictly before parents so
// no delete can trip a foreign key. One explicit statement per table keeps
// the ordering invariant visible and testable.
var resetOrder = []string{
	"updates",
	"chat_members",
	"messages",
	"chats",
	"users",
}

// ResetAll destructively clears every fixture table through a fresh
// connection built from the supplied credentials. Any failure propagates
// loudly: a half-cleared store is unsafe to keep testing against. The
// caller must hold exclusive access to the store for the duration.
func ResetAll(cfg *config.DatabaseConfig) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer sqlDB.Close()

	return clearAll(db)
}

func clearAll(db *gorm.DB) error {
	for _, table := range resetOrder {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("%w: table %s: %v", ErrStorage, table, err)
		}
	}
	return nil
}
