package telegram

import (
	"errors"
	"strings"
	"testing"

	"scriptura/pkg/api"
	"scriptura/pkg/channels"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, r.err
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"anything"}, splitMessage("anything", 0))

	parts := splitMessage(strings.Repeat("a", 25), 10)
	assert.Equal(t, []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}, parts)

	// Breaks after a late newline rather than mid-line.
	parts = splitMessage("1. aaaa\n2. bbbb\n3. cccc", 12)
	assert.Equal(t, []string{"1. aaaa\n", "2. bbbb\n", "3. cccc"}, parts)
}

func TestSplitMessageCountsRunes(t *testing.T) {
	msg := strings.Repeat("愛", 7)
	parts := splitMessage(msg, 3)
	require.Len(t, parts, 3)
	assert.Equal(t, msg, strings.Join(parts, ""))
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 3)
	}
}

func TestSendSplitsLongAnswers(t *testing.T) {
	rec := &recordingSender{}
	ch := &TelegramChannel{sender: rec, messageLimit: 10}

	err := ch.Send(api.SessionContext{ChatID: "42"}, strings.Repeat("x", 21))
	require.NoError(t, err)
	require.Len(t, rec.sent, 3)

	first := rec.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), first.ChatID)
	assert.Equal(t, strings.Repeat("x", 10), first.Text)
}

func TestSendErrors(t *testing.T) {
	ch := &TelegramChannel{sender: &recordingSender{}, messageLimit: 10}
	assert.Error(t, ch.Send(api.SessionContext{ChatID: "not-a-number"}, "hi"))

	ch = &TelegramChannel{sender: &recordingSender{err: errors.New("blocked")}, messageLimit: 10}
	assert.ErrorContains(t, ch.Send(api.SessionContext{ChatID: "1"}, "hi"), "blocked")
}

func TestSendSignalTyping(t *testing.T) {
	rec := &recordingSender{}
	ch := &TelegramChannel{sender: rec}

	require.NoError(t, ch.SendSignal(api.SessionContext{ChatID: "7"}, "thinking"))
	require.NoError(t, ch.SendSignal(api.SessionContext{ChatID: "7"}, "other"))
	require.Len(t, rec.sent, 1)

	action := rec.sent[0].(tgbotapi.ChatActionConfig)
	assert.Equal(t, tgbotapi.ChatTyping, action.Action)
}

func TestToUnified(t *testing.T) {
	update := tgbotapi.Update{
		UpdateID: 5,
		Message: &tgbotapi.Message{
			Text: "  John 3:16 ",
			From: &tgbotapi.User{ID: 11, UserName: "reader"},
			Chat: &tgbotapi.Chat{ID: 22},
		},
	}
	msg := toUnified(update)
	require.NotNil(t, msg)
	assert.Equal(t, "John 3:16", msg.Content)
	assert.Equal(t, "11", msg.Session.UserID)
	assert.Equal(t, "22", msg.Session.ChatID)
	assert.Equal(t, "reader", msg.Session.Username)

	assert.Nil(t, toUnified(tgbotapi.Update{}))
	update.Message.Text = ""
	assert.Nil(t, toUnified(update))
}

func TestFactoryRequiresToken(t *testing.T) {
	_, err := (&TelegramFactory{}).Create([]byte(`{}`), channels.Deps{})
	assert.ErrorContains(t, err, "missing telegram token")

	_, err = (&TelegramFactory{}).Create([]byte(`{`), channels.Deps{})
	assert.Error(t, err)
}
