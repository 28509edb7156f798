package helpers

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valpere/govorun/internal/models"
)

// MockDB represents a mocked database connection for testing
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

// NewMockDB creates a new mock database connection
func NewMockDB(t *testing.T) *MockDB {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	return &MockDB{
		DB:   gormDB,
		Mock: mock,
	}
}

// Close closes the mock database connection
func (m *MockDB) Close() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ExpectationsWereMet checks if all expected database interactions were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	require.NoError(t, m.Mock.ExpectationsWereMet())
}

// MockUser creates a mock user record for testing
func MockUser(userID int64) *models.User {
	return &models.User{
		ID:           userID,
		Username:     "testuser",
		FirstName:    "Test",
		LastName:     "User",
		LanguageCode: "en",
		IsActive:     true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// MockChat creates a mock chat record for testing
func MockChat(chatID int64) *models.Chat {
	return &models.Chat{
		ID:        chatID,
		Type:      "private",
		Username:  "testchat",
		FirstName: "Test",
		LastName:  "Chat",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// MockMessage creates a mock archived message for testing
func MockMessage(messageID, chatID, userID int64) *models.Message {
	return &models.Message{
		MessageID: messageID,
		ChatID:    chatID,
		UserID:    userID,
		Text:      "dummy",
		Date:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// NewResult creates a new SQL result for testing
func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}

// AnyTime is a custom matcher for time values in SQL mocks
type AnyTime struct{}

// Match implements the sqlmock.Argument interface
func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

// ExpectUserFind sets up expectations for finding a user
func (m *MockDB) ExpectUserFind(userID int64, user *models.User) {
	rows := sqlmock.NewRows([]string{
		"id", "username", "first_name", "last_name", "language_code",
		"is_bot", "is_active", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.Username, user.FirstName, user.LastName, user.LanguageCode,
		user.IsBot, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)

	m.Mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(rows)
}

// ExpectMessageRequestInsert sets up expectations for the transactional
// message + update-tracking insert
func (m *MockDB) ExpectMessageRequestInsert() {
	m.Mock.ExpectBegin()
	m.Mock.ExpectQuery(`INSERT INTO "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("6e8bc430-9c3a-11d9-9669-0800200c9a66"))
	m.Mock.ExpectQuery(`INSERT INTO "updates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("6e8bc430-9c3a-11d9-9669-0800200c9a67"))
	m.Mock.ExpectCommit()
}

// ExpectParticipantUpsert sets up expectations for the user/chat/membership
// upserts performed after a message insert
func (m *MockDB) ExpectParticipantUpsert() {
	// User and chat upserts fetch defaulted columns back via RETURNING
	m.Mock.ExpectBegin()
	m.Mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"language_code", "is_bot"}).
			AddRow("en", false))
	m.Mock.ExpectCommit()
	m.Mock.ExpectBegin()
	m.Mock.ExpectQuery(`INSERT INTO "chats"`).
		WillReturnRows(sqlmock.NewRows([]string{"all_members_are_admins"}).
			AddRow(false))
	m.Mock.ExpectCommit()
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`INSERT INTO "chat_members"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	m.Mock.ExpectCommit()
}
