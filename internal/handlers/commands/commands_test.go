package commands

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/govorun/internal/services"
	"github.com/valpere/govorun/pkg/metrics"
	"github.com/valpere/govorun/tests/fixtures"
	"github.com/valpere/govorun/tests/helpers"
)

func TestNew(t *testing.T) {
	logger := zerolog.Nop()

	handler := New(nil, &logger)

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.logger)
}

func TestUnknownCommand(t *testing.T) {
	logger := zerolog.Nop()
	handler := New(nil, &logger)

	tests := []struct {
		name string
		text string
	}{
		{"close misspelling", "/strat"},
		{"with bot mention", "/hlep@govorun_test_bot"},
		{"gibberish", "/xyzzyplugh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBot := helpers.NewMockBot()
			ctx := helpers.NewCommandContext(tt.text)

			err := handler.UnknownCommand(mockBot.Bot, ctx)

			require.NoError(t, err)
			// A reply went out through the API client
			assert.Contains(t, mockBot.Client.Requests, "sendMessage")
		})
	}
}

func TestHandleTextMessage(t *testing.T) {
	mockDB := helpers.NewMockDB(t)
	defer mockDB.Close()

	logger := zerolog.Nop()
	svcs := services.New(mockDB.DB, nil, helpers.GetTestConfig(), &logger, metrics.New())
	handler := New(svcs, &logger)

	mockBot := helpers.NewMockBot()
	update := fixtures.BuildCommandUpdate("hello there")
	ctx := helpers.NewMockContext(update)

	mockDB.ExpectMessageRequestInsert()
	mockDB.ExpectParticipantUpsert()

	err := handler.HandleTextMessage(mockBot.Bot, ctx)

	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestHandleAudioMessage(t *testing.T) {
	mockDB := helpers.NewMockDB(t)
	defer mockDB.Close()

	logger := zerolog.Nop()
	svcs := services.New(mockDB.DB, nil, helpers.GetTestConfig(), &logger, metrics.New())
	handler := New(svcs, &logger)

	payload := fixtures.FakeAudioPayload()
	update, err := fixtures.BuildUpdate(map[string]any{
		"update_id": fixtures.RandomID(),
		"message": map[string]any{
			"message_id": fixtures.RandomID(),
			"from":       fixtures.UserTemplate(),
			"chat":       fixtures.ChatTemplate(),
			"date":       int64(1700000000),
			"audio": map[string]any{
				"file_id":        payload["file_id"],
				"file_unique_id": payload["file_id"],
				"duration":       int64(95),
				"performer":      payload["performer"],
				"title":          payload["title"],
				"mime_type":      payload["mime_type"],
				"file_size":      payload["file_size"],
			},
		},
	})
	require.NoError(t, err)

	mockBot := helpers.NewMockBot()
	ctx := helpers.NewMockContext(update)

	mockDB.ExpectMessageRequestInsert()
	mockDB.ExpectParticipantUpsert()

	err = handler.HandleAudioMessage(mockBot.Bot, ctx)

	require.NoError(t, err)
	assert.Contains(t, mockBot.Client.Requests, "sendMessage")
	mockDB.ExpectationsWereMet(t)
}

func TestKnownCommandsCoverSuggestions(t *testing.T) {
	// Every registered command should be a suggestion candidate
	assert.ElementsMatch(t,
		[]string{"start", "help", "stats", "history", "version"},
		knownCommands,
	)
}
