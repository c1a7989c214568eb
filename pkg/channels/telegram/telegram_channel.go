package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scriptura/pkg/api"
	"scriptura/pkg/llm"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	Token string `json:"token"` // The secret BOT API string provided by @BotFather
}

// Sender is the part of the bot API the channel writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel answers scripture questions over a Telegram bot. Only
// text messages are handled; photos and captions-only posts are ignored.
type TelegramChannel struct {
	config       TelegramConfig
	bot          *tgbotapi.BotAPI
	sender       Sender
	messageLimit int                // Maximum rune count per message bubble
	stopCtx      context.Context    // Aborts the long-polling HTTP request
	stopCancel   context.CancelFunc // Triggers the abort
}

func NewTelegramChannel(cfg TelegramConfig, msgLimit int) (*TelegramChannel, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Dials are tied to stopCtx so an in-flight long poll dies on Stop()
	// and a reloaded bot does not hit 409 Conflict.
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	botHttpClient := &http.Client{
		Timeout: 90 * time.Second,
		Transport: &http.Transport{
			DialContext: func(dialCtx context.Context, network, addr string) (net.Conn, error) {
				mergedCtx, mergedCancel := context.WithCancel(dialCtx)
				go func() {
					select {
					case <-ctx.Done():
						mergedCancel()
					case <-mergedCtx.Done():
					}
				}()
				return dialer.DialContext(mergedCtx, network, addr)
			},
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, botHttpClient)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &TelegramChannel{
		config:       cfg,
		bot:          bot,
		sender:       bot,
		messageLimit: msgLimit,
		stopCtx:      ctx,
		stopCancel:   cancel,
	}, nil
}

// ID returns the unique platform identifier "telegram".
func (t *TelegramChannel) ID() string {
	return "telegram"
}

// Start runs the long-polling update loop in a background goroutine.
func (t *TelegramChannel) Start(ctx api.ChannelContext) error {
	go t.poll(ctx)
	return nil
}

func (t *TelegramChannel) poll(ctx api.ChannelContext) {
	offset := 0
	for {
		select {
		case <-t.stopCtx.Done():
			return
		default:
		}

		reqConfig := tgbotapi.NewUpdate(offset)
		reqConfig.Timeout = 60

		// GetUpdates keeps the offset under our control; GetUpdatesChan does not.
		updates, err := t.bot.GetUpdates(reqConfig)
		if err != nil {
			select {
			case <-t.stopCtx.Done():
				return
			case <-time.After(3 * time.Second):
				slog.Debug("Failed to get telegram updates", "error", err)
				continue
			}
		}

		for _, update := range updates {
			if update.UpdateID < offset {
				continue
			}
			offset = update.UpdateID + 1

			if msg := toUnified(update); msg != nil {
				ctx.OnMessage(t.ID(), msg)
			}
		}
	}
}

// toUnified maps a text update to a UnifiedMessage, or nil if there is no text.
func toUnified(update tgbotapi.Update) *api.UnifiedMessage {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return nil
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return nil
	}
	return &api.UnifiedMessage{
		Session: api.SessionContext{
			ChannelID: "telegram",
			UserID:    strconv.FormatInt(m.From.ID, 10),
			ChatID:    strconv.FormatInt(m.Chat.ID, 10),
			Username:  m.From.UserName,
		},
		Content: text,
		Raw:     update,
	}
}

// SendSignal shows the typing indicator while the agent is working.
func (t *TelegramChannel) SendSignal(session api.SessionContext, signal string) error {
	if signal != llm.BlockTypeThinking {
		return nil
	}
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return err
	}
	_, err = t.sender.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (t *TelegramChannel) Stop() error {
	t.stopCancel()

	// CloseIdleConnections does not abort reads already in flight, but it clears the pool.
	if t.bot != nil {
		if httpClient, ok := t.bot.Client.(*http.Client); ok && httpClient != nil {
			if transport, ok := httpClient.Transport.(*http.Transport); ok {
				transport.CloseIdleConnections()
			}
		}
	}
	return nil
}

func (t *TelegramChannel) Send(session api.SessionContext, message string) error {
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id for telegram: %s", session.ChatID)
	}

	for i, chunk := range splitMessage(message, t.messageLimit) {
		if _, err := t.sender.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram send chunk %d failed: %w", i, err)
		}
	}
	return nil
}

// splitMessage cuts message into pieces of at most limit runes, preferring
// to break after a newline in the second half of a piece.
func splitMessage(message string, limit int) []string {
	runes := []rune(message)
	if limit <= 0 || len(runes) <= limit {
		return []string{message}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
