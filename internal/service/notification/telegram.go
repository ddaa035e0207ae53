package notification

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink destination 为 chat id
type TelegramSink struct {
	bot botSender
}

func NewTelegramSink(bot *tgbotapi.BotAPI) *TelegramSink {
	return &TelegramSink{bot: bot}
}

func (s *TelegramSink) Deliver(ctx context.Context, chat string, msg Message) error {
	if chat == "" {
		return ErrNoDestination
	}
	chatID, err := strconv.ParseInt(strings.TrimPrefix(chat, "tg:"), 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", chat, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := tgbotapi.NewMessage(chatID, RenderHTML(msg))
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true
	if _, err := s.bot.Send(m); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

// RenderHTML 把 embed 风格的消息转成 telegram 支持的 html 子集
func RenderHTML(msg Message) string {
	var sb strings.Builder
	title := html.EscapeString(msg.Title)
	if msg.URL != "" {
		title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(msg.URL), title)
	}
	sb.WriteString("<b>" + title + "</b>\n")
	for _, f := range msg.Fields {
		sb.WriteString("\n<b>" + html.EscapeString(stripMarkdown(f.Name)) + "</b>\n")
		sb.WriteString(html.EscapeString(stripMarkdown(f.Value)) + "\n")
	}
	if msg.Footer != "" {
		sb.WriteString("\n<i>" + html.EscapeString(msg.Footer) + "</i>")
	}
	return sb.String()
}

func stripMarkdown(s string) string {
	return strings.NewReplacer("**", "", "`", "").Replace(s)
}
