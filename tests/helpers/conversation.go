package helpers

import (
	"context"
	"errors"
	"fmt"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/zerolog"

	"github.com/valpere/govorun/tests/fixtures"
)

// ErrNoConnection reports that the fixture store has no live connection
var ErrNoConnection = errors.New("fixture store is not connected")

// ConversationStore is the persistence collaborator the bootstrapper writes
// through. internal/services.MessageService satisfies it in production.
type ConversationStore interface {
	IsConnected() bool
	InsertMessageRequest(ctx context.Context, msg *gotgbot.Message) error
	InsertUser(ctx context.Context, user *gotgbot.User, chat *gotgbot.Chat) error
}

// BootstrapResult reports a conversation bootstrap. On success Err is nil
// and the three identifiers are the freshly generated ones; on failure Err
// carries the reason and the identifiers are zero.
type BootstrapResult struct {
	MessageID int64
	UserID    int64
	ChatID    int64
	Err       error
}

// OK reports whether the bootstrap persisted fully
func (r BootstrapResult) OK() bool {
	return r.Err == nil
}

// Bootstrapper persists a linked user/chat/message/update record set so
// tests can assert against known identifiers.
type Bootstrapper struct {
	store  ConversationStore
	logger *zerolog.Logger
}

func NewBootstrapper(store ConversationStore, logger *zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:  store,
		logger: logger,
	}
}

// StartConversation generates three independent random identifiers, builds
// a message carrying them and persists it in two steps: the message/update
// request first, then the sender and chat as linked records. Without a live
// connection it returns immediately with zero writes. A failure in either
// step aborts the operation; step one is not rolled back — these are
// disposable fixtures, not production data.
func (b *Bootstrapper) StartConversation(ctx context.Context) BootstrapResult {
	if !b.store.IsConnected() {
		return BootstrapResult{Err: ErrNoConnection}
	}

	messageID := fixtures.RandomID()
	userID := fixtures.RandomID()
	chatID := fixtures.RandomID()

	msg := fixtures.BuildMessage(
		map[string]any{"message_id": messageID},
		map[string]any{"id": userID},
		map[string]any{"id": chatID},
	)

	if err := b.store.InsertMessageRequest(ctx, &msg); err != nil {
		b.logger.Debug().Err(err).Msg("Conversation bootstrap aborted on message insert")
		return BootstrapResult{Err: fmt.Errorf("persist message request: %w", err)}
	}

	if err := b.store.InsertUser(ctx, msg.From, &msg.Chat); err != nil {
		b.logger.Debug().Err(err).Msg("Conversation bootstrap aborted on participant upsert")
		return BootstrapResult{Err: fmt.Errorf("persist participants: %w", err)}
	}

	return BootstrapResult{
		MessageID: messageID,
		UserID:    userID,
		ChatID:    chatID,
	}
}
