package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/govorun/pkg/metrics"
	"github.com/valpere/govorun/tests/fixtures"
	"github.com/valpere/govorun/tests/helpers"
)

func TestMessageService_IsConnected(t *testing.T) {
	logger := helpers.NewSilentTestLogger()

	t.Run("live connection", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		service := NewMessageService(mockDB.DB, logger, nil)

		assert.True(t, service.IsConnected())
	})

	t.Run("nil database", func(t *testing.T) {
		service := NewMessageService(nil, logger, nil)

		assert.False(t, service.IsConnected())
	})
}

func TestMessageService_InsertMessageRequest(t *testing.T) {
	logger := helpers.NewSilentTestLogger()

	t.Run("persists message and update row in one transaction", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		m := metrics.New()
		service := NewMessageService(mockDB.DB, logger, m)

		msg := fixtures.BuildMessage(
			map[string]any{"message_id": int64(101)},
			map[string]any{"id": int64(42)},
			map[string]any{"id": int64(7)},
		)

		mockDB.ExpectMessageRequestInsert()

		err := service.InsertMessageRequest(context.Background(), &msg)

		require.NoError(t, err)
		assert.Equal(t, float64(1), m.ArchivedValue("text"))
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rejected insert rolls back and surfaces the error", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		service := NewMessageService(mockDB.DB, logger, nil)

		msg := fixtures.BuildMessage(nil, nil, nil)

		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectQuery(`INSERT INTO "messages"`).
			WillReturnError(errors.New("constraint violation"))
		mockDB.Mock.ExpectRollback()

		err := service.InsertMessageRequest(context.Background(), &msg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "constraint violation")
		mockDB.ExpectationsWereMet(t)
	})
}

func TestMessageService_InsertUser(t *testing.T) {
	logger := helpers.NewSilentTestLogger()

	t.Run("upserts user, chat and membership", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		service := NewMessageService(mockDB.DB, logger, nil)

		user := fixtures.BuildUser(map[string]any{"id": int64(42)})
		chat := fixtures.BuildChat(map[string]any{"id": int64(7)})

		mockDB.ExpectParticipantUpsert()

		err := service.InsertUser(context.Background(), &user, &chat)

		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("nil participants are skipped", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		service := NewMessageService(mockDB.DB, logger, nil)

		err := service.InsertUser(context.Background(), nil, nil)

		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rejected upsert names the user", func(t *testing.T) {
		mockDB := helpers.NewMockDB(t)
		defer mockDB.Close()

		service := NewMessageService(mockDB.DB, logger, nil)

		user := fixtures.BuildUser(map[string]any{"id": int64(42)})

		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnError(errors.New("deadlock detected"))
		mockDB.Mock.ExpectRollback()

		err := service.InsertUser(context.Background(), &user, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "42")
		mockDB.ExpectationsWereMet(t)
	})
}

func TestMessageService_RecentMessages(t *testing.T) {
	logger := helpers.NewSilentTestLogger()

	mockDB := helpers.NewMockDB(t)
	defer mockDB.Close()

	service := NewMessageService(mockDB.DB, logger, nil)

	rows := sqlmock.NewRows([]string{"message_id", "chat_id", "user_id", "text", "date"}).
		AddRow(2, 7, 42, "second", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
		AddRow(1, 7, 42, "first", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	mockDB.Mock.ExpectQuery(`SELECT \* FROM "messages" WHERE chat_id = \$1 ORDER BY date DESC LIMIT \$2`).
		WithArgs(int64(7), 10).
		WillReturnRows(rows)

	messages, err := service.RecentMessages(context.Background(), 7, 10)

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Text)
	assert.Equal(t, int64(7), messages[0].ChatID)
	mockDB.ExpectationsWereMet(t)
}
