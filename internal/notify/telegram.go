package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"newstrader/internal/config"
	"newstrader/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TelegramSender отправляет уведомления через Telegram Bot API.
//
// Личные получатели получают все сообщения. Разбор новости дополнительно
// зеркалируется в канал, когда impact_score достигает порога сделки.
type TelegramSender struct {
	token           string
	chatIDs         []int64
	channelChatID   int64
	impactThreshold int
	apiURL          string
	httpClient      *http.Client
}

// NewTelegramSender создает отправитель уведомлений
func NewTelegramSender(cfg config.TelegramConfig, impactThreshold int, httpClient *http.Client) *TelegramSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &TelegramSender{
		token:           cfg.BotToken,
		chatIDs:         cfg.ChatIDs,
		channelChatID:   cfg.ChannelChatID,
		impactThreshold: impactThreshold,
		apiURL:          "https://api.telegram.org",
		httpClient:      httpClient,
	}
}

// NewsAlert отправляет полный разбор новости всем получателям.
// При impact_score >= порога сообщение уходит и в канал.
func (t *TelegramSender) NewsAlert(ctx context.Context, article models.NewsArticle, analysis *models.Analysis) {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>%s</b>\n\n", safeHTML(article.Title))
	fmt.Fprintf(&b, "📊 <b>Влияние:</b> %d/100\n", analysis.ImpactScore)
	fmt.Fprintf(&b, "⏱️ <b>Срочность:</b> %s\n\n", safeHTML(capitalize(analysis.Urgency)))
	fmt.Fprintf(&b, "💬 <b>Комментарий:</b> %s\n\n", orDash(analysis.Reasoning))
	fmt.Fprintf(&b, "💰 <b>Монета:</b> %s\n", orDash(analysis.Coin))
	fmt.Fprintf(&b, "🎯 <b>Тейк-профит:</b> %s\n", orDash(analysis.TakeProfit))
	fmt.Fprintf(&b, "🛑 <b>Стоп-лосс:</b> %s\n", orDash(analysis.StopLoss))
	fmt.Fprintf(&b, "⏳ <b>Срок сделки:</b> %s\n\n", orDash(analysis.TradeDuration))
	fmt.Fprintf(&b, "👉 <a href=\"%s\">Читать статью</a>\n", safeHTML(article.URL))

	message := b.String()
	t.sendToAll(ctx, message)

	if t.channelChatID != 0 && analysis.ImpactScore >= t.impactThreshold {
		t.send(ctx, t.channelChatID, message)
	}
}

// TradeUpdate отправляет сокращенное сообщение о сделке
func (t *TelegramSender) TradeUpdate(ctx context.Context, title, coin string, hint models.TradeHint) {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>%s</b>\n\n", safeHTML(title))
	fmt.Fprintf(&b, "💰 <b>Монета:</b> %s\n", orDash(coin))
	fmt.Fprintf(&b, "🎯 <b>Тейк-профит:</b> %s\n", orDash(hint.TakeProfit))
	fmt.Fprintf(&b, "🛑 <b>Стоп-лосс:</b> %s\n", orDash(hint.StopLoss))
	fmt.Fprintf(&b, "⏳ <b>Срок сделки:</b> %s\n", orDash(hint.Duration))

	t.sendToAll(ctx, b.String())
}

// PairsAlert отправляет событие парной стратегии
func (t *TelegramSender) PairsAlert(ctx context.Context, text string, details PairsDetails) {
	var b strings.Builder
	b.WriteString("📊 <b>Pairs Trading</b>\n\n")
	fmt.Fprintf(&b, "%s\n\n", safeHTML(text))

	if details.Pair != "" {
		fmt.Fprintf(&b, "💱 <b>Пара:</b> %s\n", safeHTML(details.Pair))
	}
	if details.Direction != "" {
		directionText := "📉 SHORT B / LONG A"
		if details.Direction == models.DirectionBuyBSellA {
			directionText = "📈 LONG B / SHORT A"
		}
		fmt.Fprintf(&b, "🎯 <b>Направление:</b> %s\n", directionText)
	}
	if details.CurrentRatio != 0 {
		fmt.Fprintf(&b, "📊 <b>Текущее отношение:</b> %.6f\n", details.CurrentRatio)
	}
	if details.TargetRatio != 0 {
		fmt.Fprintf(&b, "🎯 <b>Целевое отношение:</b> %.6f\n", details.TargetRatio)
	}
	if details.StopLossRatio != 0 {
		fmt.Fprintf(&b, "🛑 <b>Стоп-лосс:</b> %.6f\n", details.StopLossRatio)
	}
	if details.Pnl != nil {
		emoji := "🔴"
		if *details.Pnl > 0 {
			emoji = "🟢"
		}
		fmt.Fprintf(&b, "\n%s <b>P&L:</b> %.2f%%\n", emoji, *details.Pnl)
	}

	t.sendToAll(ctx, b.String())
}

// sendToAll отправляет сообщение всем личным получателям
func (t *TelegramSender) sendToAll(ctx context.Context, message string) {
	for _, chatID := range t.chatIDs {
		t.send(ctx, chatID, message)
	}
}

// send отправляет одно сообщение. Ошибка логируется и не возвращается:
// уведомления не должны останавливать конвейер.
func (t *TelegramSender) send(ctx context.Context, chatID int64, message string) {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     message,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	})
	if err != nil {
		log.Printf("Telegram: failed to marshal payload: %v", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Telegram: failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Printf("Telegram: send to %d failed: %v", chatID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Telegram: chat %d returned %d: %s", chatID, resp.StatusCode, string(body))
	}
}

// safeHTML экранирует угловые скобки для parse_mode=HTML
func safeHTML(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

// orDash подставляет прочерк вместо пустого значения
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return safeHTML(s)
}

// capitalize поднимает первую букву (для уровня срочности)
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
