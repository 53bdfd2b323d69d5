// Package news опрашивает ленту анонсов биржи и отдает свежие заголовки.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"newstrader/internal/config"
	"newstrader/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEmptyFeed - лента анонсов не содержит статей
var ErrEmptyFeed = errors.New("announcement feed is empty")

// announcementBase - публичная страница анонса по его коду
const announcementBase = "https://www.binance.com/en/support/announcement/"

// Client - клиент ленты анонсов
type Client struct {
	cfg        config.NewsConfig
	httpClient *http.Client
}

// NewClient создает клиент ленты анонсов
func NewClient(cfg config.NewsConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// feedArticle - статья в ответе CMS
type feedArticle struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// feedResponse - ответ CMS. Эндпоинт отдает статьи в одном из двух
// вариантов раскладки: data.articles либо data.catalogs[0].articles.
type feedResponse struct {
	Data struct {
		Articles []feedArticle `json:"articles"`
		Catalogs []struct {
			Articles []feedArticle `json:"articles"`
		} `json:"catalogs"`
	} `json:"data"`
}

// Latest возвращает свежие анонсы, самые новые первыми
func (c *Client) Latest(ctx context.Context) ([]models.NewsArticle, error) {
	params := url.Values{
		"type":      {"1"},
		"pageNo":    {"1"},
		"pageSize":  {strconv.Itoa(c.cfg.PageSize)},
		"catalogId": {"48"}, // New Cryptocurrency Listing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, string(body))
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	raw := feed.Data.Articles
	if len(raw) == 0 && len(feed.Data.Catalogs) > 0 {
		raw = feed.Data.Catalogs[0].Articles
	}
	if len(raw) == 0 {
		return nil, ErrEmptyFeed
	}

	articles := make([]models.NewsArticle, 0, len(raw))
	for _, a := range raw {
		id := a.Code
		if id == "" {
			id = strconv.FormatInt(a.ID, 10)
		}
		articles = append(articles, models.NewsArticle{
			ID:    id,
			Title: a.Title,
			URL:   announcementBase + a.Code,
		})
	}

	return articles, nil
}
