package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"newstrader/internal/config"
	"newstrader/internal/models"
)

type sentMessage struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// collectServer собирает все отправленные сообщения
func collectServer(t *testing.T) (*httptest.Server, func() []sentMessage) {
	t.Helper()

	var mu sync.Mutex
	var messages []sentMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg sentMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("Невалидный payload: %v", err)
		}
		mu.Lock()
		messages = append(messages, msg)
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	return server, func() []sentMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]sentMessage(nil), messages...)
	}
}

func newTestSender(serverURL string, threshold int) *TelegramSender {
	sender := NewTelegramSender(config.TelegramConfig{
		BotToken:      "test-token",
		ChatIDs:       []int64{100, 200},
		ChannelChatID: -300,
		Timeout:       5 * time.Second,
	}, threshold, nil)
	sender.apiURL = serverURL
	return sender
}

func TestNewsAlert_BelowThreshold(t *testing.T) {
	server, collected := collectServer(t)
	sender := newTestSender(server.URL, 64)

	article := models.NewsArticle{Title: "Some news", URL: "https://example.com"}
	analysis := &models.Analysis{ImpactScore: 30, Urgency: "low", Coin: "BTC"}

	sender.NewsAlert(context.Background(), article, analysis)

	messages := collected()
	if len(messages) != 2 {
		t.Fatalf("Отправлено %d сообщений, ожидалось 2 (только личные)", len(messages))
	}
	for _, msg := range messages {
		if msg.ChatID == -300 {
			t.Error("Канал не должен получать новость ниже порога")
		}
		if msg.ParseMode != "HTML" {
			t.Errorf("parse_mode = %q, ожидалось HTML", msg.ParseMode)
		}
	}
}

func TestNewsAlert_MirroredToChannel(t *testing.T) {
	server, collected := collectServer(t)
	sender := newTestSender(server.URL, 64)

	article := models.NewsArticle{Title: "Big listing", URL: "https://example.com"}
	analysis := &models.Analysis{ImpactScore: 64, Urgency: "high", Coin: "ARB"}

	sender.NewsAlert(context.Background(), article, analysis)

	messages := collected()
	if len(messages) != 3 {
		t.Fatalf("Отправлено %d сообщений, ожидалось 3 (личные + канал)", len(messages))
	}
	channelSeen := false
	for _, msg := range messages {
		if msg.ChatID == -300 {
			channelSeen = true
		}
	}
	if !channelSeen {
		t.Error("Канал должен получить новость на пороге (граница включается)")
	}
}

func TestNewsAlert_EscapesHTML(t *testing.T) {
	server, collected := collectServer(t)
	sender := newTestSender(server.URL, 100)

	article := models.NewsArticle{Title: "Listing <TOKEN>", URL: "https://example.com"}
	analysis := &models.Analysis{ImpactScore: 10, Urgency: "low"}

	sender.NewsAlert(context.Background(), article, analysis)

	messages := collected()
	if len(messages) == 0 {
		t.Fatal("Сообщения не отправлены")
	}
	if !contains(messages[0].Text, "&lt;TOKEN&gt;") {
		t.Errorf("Заголовок не экранирован: %q", messages[0].Text)
	}
}

func TestTradeUpdate(t *testing.T) {
	server, collected := collectServer(t)
	sender := newTestSender(server.URL, 64)

	sender.TradeUpdate(context.Background(), "Отложенный листинг исполнен", "ARB", models.TradeHint{
		TakeProfit: "+20%",
		StopLoss:   "-5%",
		Duration:   "1 неделя",
	})

	messages := collected()
	if len(messages) != 2 {
		t.Fatalf("Отправлено %d сообщений, ожидалось 2", len(messages))
	}
	if !contains(messages[0].Text, "ARB") || !contains(messages[0].Text, "+20%") {
		t.Errorf("Неожиданный текст: %q", messages[0].Text)
	}
}

func TestPairsAlert_WithPnl(t *testing.T) {
	server, collected := collectServer(t)
	sender := newTestSender(server.URL, 64)

	pnl := 6.67
	sender.PairsAlert(context.Background(), "Позиция закрыта", PairsDetails{
		Pair:         "BTC/ETH",
		Direction:    models.DirectionSellBBuyA,
		CurrentRatio: 1.5,
		Pnl:          &pnl,
	})

	messages := collected()
	if len(messages) != 2 {
		t.Fatalf("Отправлено %d сообщений, ожидалось 2", len(messages))
	}
	if !contains(messages[0].Text, "6.67") || !contains(messages[0].Text, "🟢") {
		t.Errorf("Неожиданный текст: %q", messages[0].Text)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
