// Package analyzer оценивает рыночное влияние новостных заголовков
// через языковую модель GigaChat.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"newstrader/internal/config"
	"newstrader/internal/models"
	"newstrader/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// systemPrompt - инструкция модели. Ответ просим строго в JSON:
// потенциал 0-100, монета, уровни сделки и срочность.
const systemPrompt = `Ты аналитик криптовалютного рынка. Тебе дают заголовок новости с биржи.
Оцени потенциал влияния новости на цену упомянутой монеты по шкале от 0 до 100.
Ответь строго одним JSON объектом без пояснений, в формате:
{"impact_score": <число 0-100>, "coin": "<тикер монеты, например BTC>", "take_profit": "<цель, например +20%>", "stop_loss": "<стоп, например -5%>", "trade_duration": "<срок удержания, например 2-5 дней>", "reasoning": "<краткое обоснование>"}
Если новость не относится к конкретной монете, укажи "coin": "unspecified" и низкий impact_score.`

// Client - клиент анализатора новостей
//
// Держит собственный кэш OAuth токена и выполняет ограниченное
// число повторов при сбоях модели. При окончательной неудаче
// возвращает нейтральный вердикт, а не ошибку: вызывающий код
// трактует его как "анализ не удался, попробовать позже".
type Client struct {
	cfg        config.AnalyzerConfig
	httpClient *http.Client
	cache      tokenCache
}

// NewClient создает клиент анализатора
func NewClient(cfg config.AnalyzerConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// chatRequest - запрос chat completions
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse - ответ chat completions
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze оценивает заголовок новости.
//
// Всегда возвращает вердикт: при исчерпании повторов это нейтральный
// вердикт (impact_score = 0, coin = "unspecified", Failed = true).
func (c *Client) Analyze(ctx context.Context, title string) *models.Analysis {
	cfg := retry.Config{
		MaxRetries:   c.cfg.MaxRetries,
		InitialDelay: 1 * time.Second,
		Multiplier:   c.cfg.BackoffBase,
		JitterFactor: 0.1,
		RetryIf:      retry.RetryIfNotContext,
	}

	analysis, err := retry.DoWithResult(ctx, func() (*models.Analysis, error) {
		return c.analyzeOnce(ctx, title)
	}, cfg)

	if err != nil {
		log.Printf("Analyzer failed for %q: %v", title, err)
		return models.FailedAnalysis(err.Error())
	}

	return analysis
}

// analyzeOnce выполняет один запрос к модели и разбирает ответ
func (c *Client) analyzeOnce(ctx context.Context, title string) (*models.Analysis, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: title},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Токен мог быть отозван раньше срока: сбрасываем кэш перед повтором
		c.cache.mu.Lock()
		c.cache.token = ""
		c.cache.mu.Unlock()
		return nil, fmt.Errorf("chat endpoint returned 401: %s", string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	content := chat.Choices[0].Message.Content
	analysis, err := parseVerdict(content)
	if err != nil {
		// Сырой ответ в лог: без него не разобраться, что вернула модель
		log.Printf("Unparsable verdict for %q: %q", title, content)
		return nil, err
	}

	return analysis, nil
}
