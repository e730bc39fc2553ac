package notification

import (
	"encoding/json"
	"fmt"

	"lendhub/internal/config"
	"lendhub/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking updates to users who linked a
// Telegram chat. It is nil-safe end to end: without a token it
// subscribes nothing and sends nothing.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs map[int64]int64 // platform user id -> telegram chat id
	logger  *zerolog.Logger
}

func NewTelegramNotifier(cfg config.NotificationsConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{
		chatIDs: make(map[int64]int64, len(cfg.Chats)),
		logger:  logger,
	}
	for _, c := range cfg.Chats {
		n.chatIDs[c.UserID] = c.ChatID
	}

	if cfg.TelegramToken == "" {
		logger.Info().Msg("telegram token is empty, notifications disabled")
		return n, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

// Subscribe wires the notifier to booking events on the bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingCreated)
	bus.Subscribe(events.EventBookingApproved, n.onBookingDecided)
	bus.Subscribe(events.EventBookingRejected, n.onBookingDecided)
}

func (n *TelegramNotifier) onBookingCreated(event *events.Event) error {
	var p events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return err
	}

	// The owner has a decision to make.
	text := fmt.Sprintf("New booking request for %q: %s .. %s (booking #%d by %s)",
		p.ItemName,
		p.Start.Format("02.01.2006 15:04"),
		p.End.Format("02.01.2006 15:04"),
		p.BookingID,
		p.BookerName,
	)
	n.send(p.OwnerID, text)
	return nil
}

func (n *TelegramNotifier) onBookingDecided(event *events.Event) error {
	var p events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return err
	}

	text := fmt.Sprintf("Your booking #%d for %q is now %s", p.BookingID, p.ItemName, p.Status)
	n.send(p.BookerID, text)
	return nil
}

func (n *TelegramNotifier) send(userID int64, text string) {
	if n.bot == nil {
		return
	}

	chatID, ok := n.chatIDs[userID]
	if !ok {
		n.logger.Debug().Int64("user_id", userID).Msg("notification skipped (no chat_id)")
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram notification")
	}
}
