package market

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
	"newstrader/pkg/ratelimit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ошибки клиента рыночных данных
var (
	// ErrSymbolNotListed - символа нет ни на споте, ни на фьючерсах.
	// Для свежих листингов это штатная ситуация, монета уходит в очередь.
	ErrSymbolNotListed = errors.New("symbol is not listed")

	// ErrNotEnoughHistory - истории свечей меньше, чем нужно для статистики
	ErrNotEnoughHistory = errors.New("not enough kline history")
)

// Client - клиент публичного API биржи
//
// Цена запрашивается сначала на споте, при неудаче на фьючерсах.
// Все запросы проходят через общий rate limiter.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	spotURL    string
	futuresURL string
}

// NewClient создает клиент рыночных данных
func NewClient(cfg config.MarketConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultHTTPClientConfig())
	}
	return &Client{
		httpClient: httpClient,
		limiter:    ratelimit.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		spotURL:    cfg.SpotURL,
		futuresURL: cfg.FuturesURL,
	}
}

// Типы рынков, на которых может торговаться символ
const (
	MarketSpot    = "spot"
	MarketFutures = "futures"
)

// tickerResponse - ответ /ticker/price (спот и фьючерсы совпадают по форме)
type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// CurrentPrice возвращает текущую цену символа и рынок, на котором
// она найдена.
//
// Сначала спот, затем фьючерсы. Если символа нет нигде,
// возвращается ErrSymbolNotListed.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, string, error) {
	price, spotErr := c.fetchTicker(ctx, c.spotURL+"/api/v3/ticker/price", symbol)
	if spotErr == nil {
		return price, MarketSpot, nil
	}

	price, futuresErr := c.fetchTicker(ctx, c.futuresURL+"/fapi/v1/ticker/price", symbol)
	if futuresErr == nil {
		return price, MarketFutures, nil
	}

	return 0, "", fmt.Errorf("%w: %s (spot: %v, futures: %v)", ErrSymbolNotListed, symbol, spotErr, futuresErr)
}

// fetchTicker запрашивает цену с одного эндпоинта
func (c *Client) fetchTicker(ctx context.Context, endpoint, symbol string) (float64, error) {
	body, err := c.get(ctx, endpoint, url.Values{"symbol": {symbol}})
	if err != nil {
		return 0, err
	}

	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("failed to decode ticker response: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q for %s: %w", ticker.Price, symbol, err)
	}

	return price, nil
}

// DailyCloses возвращает последние дневные цены закрытия символа,
// от старых к новым.
//
// Запрашивается days+5 свечей с запасом на выходные биржи данных.
// Если истории меньше days, возвращается ErrNotEnoughHistory.
func (c *Client) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	params := url.Values{
		"symbol":   {symbol},
		"interval": {"1d"},
		"limit":    {strconv.Itoa(days + 5)},
	}

	body, err := c.get(ctx, c.spotURL+"/api/v3/klines", params)
	if err != nil {
		return nil, err
	}

	// Формат свечи: [openTime, open, high, low, close, volume, ...]
	var klines [][]interface{}
	if err := json.Unmarshal(body, &klines); err != nil {
		return nil, fmt.Errorf("failed to decode klines response: %w", err)
	}

	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		if len(k) < 5 {
			return nil, fmt.Errorf("malformed kline for %s: %v", symbol, k)
		}
		closeStr, ok := k[4].(string)
		if !ok {
			return nil, fmt.Errorf("malformed close price for %s: %v", symbol, k[4])
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid close price %q for %s: %w", closeStr, symbol, err)
		}
		closes = append(closes, closePrice)
	}

	if len(closes) < days {
		return nil, fmt.Errorf("%w: %s has %d daily closes, need %d", ErrNotEnoughHistory, symbol, len(closes), days)
	}

	// Берем ровно days последних свечей
	return closes[len(closes)-days:], nil
}

// get выполняет GET запрос с rate limiting и проверкой статуса
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
