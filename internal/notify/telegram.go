package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
)

// Telegram: пассивный нотифайер в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

// NewTelegramWithBot: для уже созданного клиента (свой endpoint, тесты).
func NewTelegramWithBot(bot *tgbot.BotAPI, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, sig models.Signal) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, FormatSignal(sig))); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatSignal: текст сообщения о сигнале.
func FormatSignal(sig models.Signal) string {
	icon := "🟢"
	if sig.Side == models.SideSell {
		icon = "🔴"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", icon, sig.Side, sig.Symbol)
	fmt.Fprintf(&b, "Вход: %s\n", num(sig.Price))
	fmt.Fprintf(&b, "SL: %s\n", num(sig.StopLoss))
	fmt.Fprintf(&b, "TP: %s\n", num(sig.TakeProfit))
	fmt.Fprintf(&b, "Объём: %s\n", num(sig.Quantity))
	fmt.Fprintf(&b, "ТФ: %s · %s · %s", strings.Join(sig.Timeframes, "/"), sig.Strategy, sig.Sizing)
	if !sig.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "\n%s", sig.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
