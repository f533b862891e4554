// Package handoff formats the confirmed booking into the outbound message
// and builds the external deep link. Opening the link is the system's only
// submission mechanism: there is no acknowledgment and no retry, and the
// local record stays committed regardless of whether the send completes.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"smokyloft/internal/config"
	"smokyloft/internal/models"
)

// Opener opens a URL in an external browsing context. The CLI plugs in a
// real browser opener; tests use a fake.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Summary renders the human-readable multi-line booking summary: venue,
// table, guest contact, schedule, itemized cart and total.
func Summary(cfg *config.Config, table *config.TableConfig, r models.Reservation, items []models.CartItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔥 *Новая бронь: %s*\n", cfg.Venue.Name)
	if table != nil {
		fmt.Fprintf(&b, "🪑 *Стол:* %s (%s)\n", table.Label, table.TypeName())
	}
	fmt.Fprintf(&b, "👤 *Гость:* %s\n", r.Name)
	fmt.Fprintf(&b, "📱 *Телефон:* %s\n", r.Phone)
	fmt.Fprintf(&b, "📅 *Дата:* %s\n", r.Date)
	fmt.Fprintf(&b, "⏰ *Время:* %s\n", r.Time)

	if len(items) > 0 {
		b.WriteString("\n🛒 *Заказ:*\n")
		total := 0
		for _, item := range items {
			fmt.Fprintf(&b, "- %s (%d %s)\n", item.Title, item.Price, cfg.Venue.Currency)
			total += item.Price
		}
		fmt.Fprintf(&b, "\n💰 *Итого:* %d %s", total, cfg.Venue.Currency)
	}

	return strings.TrimSpace(b.String())
}

// DeepLink builds the t.me link carrying the pre-filled message text.
func DeepLink(admin, text string) string {
	return fmt.Sprintf("https://t.me/%s?text=%s", admin, url.QueryEscape(text))
}
