package analyzer

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// token.go - кэш OAuth токена анализатора
//
// Токен живёт около 30 минут. Кэш обновляет его заранее,
// чтобы запрос анализа не упёрся в истёкший токен.

// tokenSafetyMargin - за сколько до истечения токен считается устаревшим
const tokenSafetyMargin = 5 * time.Minute

// tokenCache хранит токен доступа и время его истечения.
// Потокобезопасен: воркеры новостей и листингов ходят в анализатор параллельно.
type tokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// oauthResponse - ответ эндпоинта выдачи токена
type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix миллисекунды
}

// accessToken возвращает действующий токен, при необходимости обновляя его
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	if c.cache.token != "" && time.Now().Before(c.cache.expiresAt.Add(-tokenSafetyMargin)) {
		return c.cache.token, nil
	}

	token, expiresAt, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	c.cache.token = token
	c.cache.expiresAt = expiresAt
	return token, nil
}

// fetchToken запрашивает новый токен доступа
func (c *Client) fetchToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{"scope": {c.cfg.Scope}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", newRequestID())
	req.Header.Set("Authorization", "Basic "+c.cfg.AuthKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var oauth oauthResponse
	if err := json.Unmarshal(body, &oauth); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if oauth.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token endpoint returned empty access_token")
	}

	return oauth.AccessToken, time.UnixMilli(oauth.ExpiresAt), nil
}

// newRequestID генерирует RqUID в формате UUID v4
func newRequestID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000-0000-4000-8000-000000000000"
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
