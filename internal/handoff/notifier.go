package handoff

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TelegramSender is the subset of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes the booking summary straight to the admin chat when a bot
// token is configured, in addition to the guest-side deep link. Sends are
// rate limited; failures are logged and swallowed, since the reservation is
// already committed locally by the time the notifier runs.
type Notifier struct {
	sender  TelegramSender
	chatID  int64
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewNotifier creates a notifier over an authorized bot API client.
func NewNotifier(sender TelegramSender, chatID int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		chatID: chatID,
		// Telegram allows ~30 msg/s to one bot; one per second is plenty here.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		logger:  logger,
	}
}

// NewBotNotifier dials the bot API with the given token.
func NewBotNotifier(token string, chatID int64, logger *zerolog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return NewNotifier(api, chatID, logger), nil
}

// Notify sends the summary to the admin chat. Never returns an error to the
// caller; delivery is best effort.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.Warn().Err(err).Msg("notifier rate limit wait aborted")
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Warn().Err(err).Msg("admin notification failed")
	}
}
