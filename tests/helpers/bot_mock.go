package helpers

import (
	"context"
	"encoding/json"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"github.com/valpere/govorun/tests/fixtures"
)

// MockBotClient is a mock BotClient for testing bot operations
type MockBotClient struct {
	// Requests records every API method invoked, in order
	Requests []string
}

func (m *MockBotClient) RequestWithContext(ctx context.Context, token string, method string, params map[string]string, data map[string]gotgbot.FileReader, opts *gotgbot.RequestOpts) (json.RawMessage, error) {
	m.Requests = append(m.Requests, method)
	// Return a mock successful response for all requests
	mockResponse := `{"message_id":1,"date":1234567890,"chat":{"id":12345,"type":"private"},"text":"test"}`
	return json.RawMessage(mockResponse), nil
}

func (m *MockBotClient) TimeoutContext(opts *gotgbot.RequestOpts) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func (m *MockBotClient) GetAPIURL(opts *gotgbot.RequestOpts) string {
	return "https://api.telegram.org"
}

func (m *MockBotClient) FileURL(token string, tgFilePath string, opts *gotgbot.RequestOpts) string {
	return "https://api.telegram.org/file/bot" + token + "/" + tgFilePath
}

// MockBot creates a minimal gotgbot.Bot instance for testing
type MockBot struct {
	Bot    *gotgbot.Bot
	Client *MockBotClient
}

// NewMockBot creates a new mock bot instance with a mock BotClient
func NewMockBot() *MockBot {
	client := &MockBotClient{}
	bot := &gotgbot.Bot{
		User: gotgbot.User{
			Id:        12345,
			IsBot:     true,
			FirstName: "GovorunTest",
			Username:  "govorun_test_bot",
		},
		Token: "test_token",
	}
	bot.BotClient = client

	return &MockBot{
		Bot:    bot,
		Client: client,
	}
}

// NewMockContext wraps an update into a dispatcher context the way the
// ext library would for a real incoming request
func NewMockContext(update *gotgbot.Update) *ext.Context {
	ctx := &ext.Context{
		Update:           update,
		EffectiveMessage: update.Message,
	}
	if update.Message != nil {
		ctx.EffectiveUser = update.Message.From
		ctx.EffectiveChat = &update.Message.Chat
	}
	ctx.Data = make(map[string]interface{})
	return ctx
}

// NewCommandContext builds a context carrying a synthesized command update
func NewCommandContext(commandText string) *ext.Context {
	return NewMockContext(fixtures.BuildCommandUpdate(commandText))
}
