// Package fixtures synthesizes structurally valid Telegram entities for
// tests: users, chats, messages and full update envelopes, built by merging
// caller overrides onto canonical templates.
package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/google/uuid"
)

// ErrInvalidEntity reports entity data that fails required-field checks
var ErrInvalidEntity = errors.New("invalid entity data")

// audioMimeTypes is the fixed set FakeAudioPayload draws from
var audioMimeTypes = []string{
	"audio/ogg",
	"audio/mpeg",
	"audio/vnd.wave",
	"audio/x-ms-wma",
	"audio/flac",
}

// UserTemplate returns the canonical default user fields. A fresh map is
// returned on every call so no test can mutate shared state.
func UserTemplate() map[string]any {
	return map[string]any{
		"id":         int64(1),
		"first_name": "first",
		"last_name":  "last",
		"username":   "user",
	}
}

// ChatTemplate returns the canonical default chat fields
func ChatTemplate() map[string]any {
	return map[string]any{
		"id":                             int64(1),
		"first_name":                     "first",
		"last_name":                      "last",
		"username":                       "name",
		"type":                           "private",
		"all_members_are_administrators": false,
	}
}

// Merge overlays partial onto template. The result carries every template
// key; caller values always win.
func Merge(partial, template map[string]any) map[string]any {
	merged := make(map[string]any, len(template)+len(partial))
	for k, v := range template {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// BuildUser constructs a user from partial data merged over UserTemplate.
// An empty partial yields the template verbatim.
func BuildUser(partial map[string]any) gotgbot.User {
	var user gotgbot.User
	decode(Merge(partial, UserTemplate()), &user)
	return user
}

// BuildChat constructs a chat from partial data merged over ChatTemplate
func BuildChat(partial map[string]any) gotgbot.Chat {
	var chat gotgbot.Chat
	decode(Merge(partial, ChatTemplate()), &chat)
	return chat
}

// BuildMessage constructs a message with a fresh random identifier, the
// current timestamp and the text "dummy". The sender comes from userPartial
// merged over the user template, the chat from chatPartial over the chat
// template. msgPartial takes precedence over every synthesized field.
func BuildMessage(msgPartial, userPartial, chatPartial map[string]any) gotgbot.Message {
	defaults := map[string]any{
		"message_id": RandomID(),
		"date":       time.Now().Unix(),
		"text":       "dummy",
		"from":       Merge(userPartial, UserTemplate()),
		"chat":       Merge(chatPartial, ChatTemplate()),
	}

	var msg gotgbot.Message
	decode(Merge(msgPartial, defaults), &msg)
	return msg
}

// BuildUpdate wraps data into an update envelope. Empty data synthesizes a
// minimal valid update with random identifiers and the current timestamp;
// non-empty data is taken verbatim. Missing envelope fields surface as an
// ErrInvalidEntity-wrapped error.
func BuildUpdate(data map[string]any) (*gotgbot.Update, error) {
	if len(data) == 0 {
		data = map[string]any{
			"update_id": RandomID(),
			"message": map[string]any{
				"message_id": RandomID(),
				"chat": map[string]any{
					"id":   RandomID(),
					"type": "private",
				},
				"date": time.Now().Unix(),
			},
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	var update gotgbot.Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	if update.UpdateId == 0 {
		return nil, fmt.Errorf("%w: missing update_id", ErrInvalidEntity)
	}
	if update.Message == nil {
		return nil, fmt.Errorf("%w: update carries no message payload", ErrInvalidEntity)
	}

	return &update, nil
}

// BuildCommandUpdate builds an update whose message text is commandText,
// with a full default user and chat. It cannot fail structurally.
func BuildCommandUpdate(commandText string) *gotgbot.Update {
	msg := BuildMessage(map[string]any{"text": commandText}, nil, nil)
	return &gotgbot.Update{
		UpdateId: RandomID(),
		Message:  &msg,
	}
}

// FakeAudioPayload produces a structurally valid audio attachment record.
// Duration components are independently random and deliberately not
// clamped, so seconds may exceed 59.
func FakeAudioPayload() map[string]any {
	return map[string]any{
		"file_id":   uuid.NewString(),
		"duration":  fmt.Sprintf("%d:%d", rand.Int63n(10), rand.Int63n(90)),
		"performer": "Govorun",
		"title":     "dummy audio",
		"mime_type": audioMimeTypes[rand.Intn(len(audioMimeTypes))],
		"file_size": rand.Int63n(99999) + 1,
	}
}

// RandomID returns a nonzero positive identifier that fits Telegram id
// columns. Distinctness across calls is probabilistic, not guaranteed.
func RandomID() int64 {
	return rand.Int63n(1<<31-2) + 1
}

// decode maps field data onto an entity through its JSON tags. Templates
// only hold scalars, so marshalling cannot fail in practice.
func decode(data map[string]any, target any) {
	raw, _ := json.Marshal(data)
	_ = json.Unmarshal(raw, target)
}
