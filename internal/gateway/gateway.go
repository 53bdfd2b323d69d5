// Package gateway отправляет торговые поручения во внешний шлюз исполнения.
//
// Шлюз принимает пакет ордеров одной сделки (вход + защитный выход)
// и возвращает номер сделки для последующей привязки к новости.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"

	"newstrader/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ошибки шлюза
var (
	// ErrRejected - шлюз отверг поручение (валидация, лимиты, баланс)
	ErrRejected = errors.New("gateway rejected the order")
)

// Типы и стороны ордеров в протоколе шлюза
const (
	OrderTypeLimit = "limit"
	OrderTypeOCO   = "oco"

	SideBuy  = "buy"
	SideSell = "sell"

	PositionSideLong = "long"
)

// Коды бирж на стороне шлюза
const (
	StockSpot    = "binance_spot"
	StockFutures = "binance_futures"
)

// StockForMarket возвращает код биржи шлюза для рынка, на котором
// найдена цена (spot или futures)
func StockForMarket(marketType string) string {
	if marketType == "futures" {
		return StockFutures
	}
	return StockSpot
}

// LegData - параметры одной ноги сделки
type LegData struct {
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	StopLoss float64 `json:"stoploss,omitempty"`
}

// Leg - один ордер в пакете сделки
type Leg struct {
	Stock        string  `json:"stock"`
	Pair         string  `json:"pair"`
	Type         string  `json:"type"`
	Side         string  `json:"side"`
	PositionSide string  `json:"positionSide"`
	Data         LegData `json:"data"`
}

// TradeTag - метаданные сделки, которые шлюз хранит рядом с ордерами
type TradeTag struct {
	Tag         string `json:"tag"`          // человекочитаемая причина сделки
	DealTimeout int64  `json:"deal_timeout"` // срок сделки в секундах
	Market      string `json:"market"`       // spot / futures
}

// submitResponse - ответ шлюза на создание сделки
type submitResponse struct {
	Status string `json:"status"`
	DealID int64  `json:"deal_id"`
	Error  string `json:"error"`
}

// Client - клиент шлюза исполнения
type Client struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
}

// NewClient создает клиент шлюза
func NewClient(cfg config.GatewayConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Submit отправляет пакет ордеров одной сделки.
//
// Параметры сделки уходят в строке запроса, ордера - JSON-телом.
// Код биржи в строке запроса берется из первой ноги пакета.
// Возвращает номер сделки, присвоенный шлюзом. Отказ шлюза
// оборачивается в ErrRejected.
func (c *Client) Submit(ctx context.Context, legs []Leg, tag TradeTag) (int64, error) {
	if len(legs) == 0 {
		return 0, fmt.Errorf("%w: empty order batch", ErrRejected)
	}

	body, err := json.Marshal(legs)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal order batch: %w", err)
	}
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal trade tag: %w", err)
	}

	stock := legs[0].Stock
	if stock == "" {
		stock = c.cfg.Stock
	}

	params := url.Values{
		"token":  {c.cfg.Token},
		"sync":   {""},
		"action": {"create"},
		"stock":  {stock},
		"mode":   {"json"},
		"tag":    {string(tagJSON)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result submitResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if result.Error != "" || result.Status != "ok" {
		return 0, fmt.Errorf("%w: %s", ErrRejected, result.Error)
	}

	return result.DealID, nil
}
