package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog"

	"github.com/valpere/govorun/internal/services"
	"github.com/valpere/govorun/internal/version"
)

type CommandHandler struct {
	services *services.Services
	logger   *zerolog.Logger
}

// knownCommands is used for "did you mean" suggestions on unknown input
var knownCommands = []string{"start", "help", "stats", "history", "version"}

func New(services *services.Services, logger *zerolog.Logger) *CommandHandler {
	return &CommandHandler{
		services: services,
		logger:   logger,
	}
}

// Start command handler
func (h *CommandHandler) Start(bot *gotgbot.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser

	if err := h.services.User.RegisterUser(context.Background(), user); err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.Id).Msg("Failed to register user")
	}

	welcomeText := fmt.Sprintf(`💬 *Welcome to Govorun*

Hello %s! I archive this conversation so nothing gets lost.

*Available Commands:*
📜 /history - Recent messages in this chat
📊 /stats - Archive statistics
ℹ️ /version - Bot version
📋 /help - Show all commands

Every text and audio message you send here is stored. Try /history!`,
		user.FirstName)

	_, err := bot.SendMessage(ctx.EffectiveChat.Id, welcomeText, &gotgbot.SendMessageOpts{
		ParseMode: "Markdown",
	})

	return err
}

// Help command handler
func (h *CommandHandler) Help(bot *gotgbot.Bot, ctx *ext.Context) error {
	helpText := `💬 *Govorun - Commands*

*🏠 Basic Commands:*
/start - Introduction and registration
/help - This message

*📜 Archive:*
/history - Last messages recorded in this chat
/stats - Users, chats and message counts

*⚙️ Misc:*
/version - Build information

Plain text and audio messages are archived automatically.`

	_, err := bot.SendMessage(ctx.EffectiveChat.Id, helpText, &gotgbot.SendMessageOpts{
		ParseMode: "Markdown",
	})

	return err
}

// Stats command handler
func (h *CommandHandler) Stats(bot *gotgbot.Bot, ctx *ext.Context) error {
	stats, err := h.services.User.GetSystemStats(context.Background())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to collect stats")
		_, err := ctx.EffectiveMessage.Reply(bot, "Statistics are unavailable right now.", nil)
		return err
	}

	text := fmt.Sprintf(`📊 *Archive Statistics*

👤 Users: %d (%d active)
💬 Chats: %d
📨 Messages: %d (%d in last 24h)`,
		stats.TotalUsers, stats.ActiveUsers, stats.TotalChats,
		stats.TotalMessages, stats.Messages24h)

	_, err = bot.SendMessage(ctx.EffectiveChat.Id, text, &gotgbot.SendMessageOpts{
		ParseMode: "Markdown",
	})

	return err
}

// History command handler
func (h *CommandHandler) History(bot *gotgbot.Bot, ctx *ext.Context) error {
	chatID := ctx.EffectiveChat.Id

	messages, err := h.services.Message.RecentMessages(context.Background(), chatID, 10)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load history")
		_, err := ctx.EffectiveMessage.Reply(bot, "History is unavailable right now.", nil)
		return err
	}

	if len(messages) == 0 {
		_, err := ctx.EffectiveMessage.Reply(bot, "Nothing archived in this chat yet.", nil)
		return err
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent messages:\n")
	for _, msg := range messages {
		text := msg.Text
		if msg.AudioFileID != "" {
			text = fmt.Sprintf("[audio %s, %s]", msg.AudioDuration, msg.AudioMimeType)
		}
		sb.WriteString(fmt.Sprintf("• %s — %s\n", msg.Date.Format("2006-01-02 15:04"), text))
	}

	_, err = bot.SendMessage(chatID, sb.String(), nil)
	return err
}

// Version command handler
func (h *CommandHandler) Version(bot *gotgbot.Bot, ctx *ext.Context) error {
	_, err := ctx.EffectiveMessage.Reply(bot, version.GetInfo().Short(), nil)
	return err
}

// UnknownCommand suggests the closest known command for unrecognized input
func (h *CommandHandler) UnknownCommand(bot *gotgbot.Bot, ctx *ext.Context) error {
	text := strings.TrimPrefix(ctx.EffectiveMessage.Text, "/")
	if idx := strings.IndexAny(text, " @"); idx >= 0 {
		text = text[:idx]
	}

	reply := "Unknown command. See /help for the full list."
	if suggestion, err := edlib.FuzzySearchThreshold(text, knownCommands, 0.6, edlib.Levenshtein); err == nil && suggestion != "" {
		reply = fmt.Sprintf("Unknown command. Did you mean /%s?", suggestion)
	}

	_, err := ctx.EffectiveMessage.Reply(bot, reply, nil)
	return err
}

// HandleTextMessage archives a plain text message
func (h *CommandHandler) HandleTextMessage(bot *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage

	if err := h.services.Message.RecordIncoming(context.Background(), msg); err != nil {
		h.logger.Error().Err(err).
			Int64("chat_id", msg.Chat.Id).
			Int64("message_id", msg.MessageId).
			Msg("Failed to archive message")
	}

	return nil
}

// HandleAudioMessage archives an audio message with its attachment metadata
func (h *CommandHandler) HandleAudioMessage(bot *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage

	if err := h.services.Message.RecordIncoming(context.Background(), msg); err != nil {
		h.logger.Error().Err(err).
			Int64("chat_id", msg.Chat.Id).
			Str("file_id", msg.Audio.FileId).
			Msg("Failed to archive audio message")
		return nil
	}

	_, err := ctx.EffectiveMessage.Reply(bot, "🎵 Audio archived.", nil)
	return err
}
