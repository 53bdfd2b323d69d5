package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Analyzer  AnalyzerConfig
	Gateway   GatewayConfig
	Trading   TradingConfig
	Market    MarketConfig
	News      NewsConfig
	Pairs     PairsConfig
	Intervals IntervalsConfig
}

// ServerConfig - настройки HTTP сервера (API мониторинга)
type ServerConfig struct {
	Port         int
	Host         string
	PasswordHash string // bcrypt-хэш пароля для basic auth (пусто = auth отключен)
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// TelegramConfig - настройки уведомлений
type TelegramConfig struct {
	BotToken      string
	ChatIDs       []int64 // личные получатели
	ChannelChatID int64   // канал для важных новостей (0 = отключен)
	Timeout       time.Duration
}

// AnalyzerConfig - настройки клиента анализатора (GigaChat)
type AnalyzerConfig struct {
	AuthKey     string // Authorization Key (Basic ...)
	TokenURL    string
	APIURL      string
	Model       string
	Scope       string
	MaxRetries  int
	BackoffBase float64 // фактор экспоненциального backoff
	Timeout     time.Duration
}

// GatewayConfig - настройки шлюза исполнения ордеров
type GatewayConfig struct {
	Token   string
	URL     string
	Stock   string // код биржи на стороне шлюза
	Timeout time.Duration
}

// TradingConfig - параметры новостной торговли
type TradingConfig struct {
	ImpactThreshold   int           // минимальный impact_score для сделки
	AllocateUSDT      float64       // фиксированный номинал сделки
	SlippagePercent   float64       // наценка к наблюдаемой цене для расчета количества
	DefaultTakeProfit float64       // % по умолчанию если анализатор не дал цель
	DefaultStopLoss   float64       // % по умолчанию если анализатор не дал стоп
	DefaultCoin       string        // монета по умолчанию при нераспознанном контексте
	QuoteCurrency     string        // валюта котировки пар (USDT)
	PriceMaxRetries   int           // попыток получения цены
	PriceRetryDelay   time.Duration // фиксированная задержка между попытками
	MaxAttempts       int           // потолок попыток для отложенного листинга
	HTTPTimeout       time.Duration // таймаут запросов к публичному API цен
}

// MarketConfig - настройки публичного API цен
type MarketConfig struct {
	SpotURL    string  // базовый URL спотового API
	FuturesURL string  // базовый URL фьючерсного API
	RateLimit  float64 // запросов в секунду
	RateBurst  float64 // ёмкость burst
}

// NewsConfig - настройки источника анонсов
type NewsConfig struct {
	URL      string // эндпоинт списка анонсов
	PageSize int    // сколько статей запрашивать за раз
}

// PairsConfig - параметры pairs trading
type PairsConfig struct {
	Pairs           []string // метки пар вида "BTC/ETH"
	LookbackDays    int      // окно расчета статистики (дней)
	MinDays         int      // минимальная история для расчета
	EntrySigma      float64  // порог входа: mean ± k·σ
	StopLossSigma   float64  // стоп-лосс: mean ± k·σ
	AllocatePerLeg  float64  // USDT на каждую ногу
	SlippagePercent float64  // наценка к цене ноги
}

// IntervalsConfig - периоды фоновых воркеров
type IntervalsConfig struct {
	News         time.Duration // опрос новостей
	Listings     time.Duration // проход очереди листингов
	Pairs        time.Duration // скан пар + проверка выходов
	StartupDelay time.Duration // задержка перед первым циклом listings/pairs
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			PasswordHash: getEnv("API_PASSWORD_HASH", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "newstrader"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatIDs:       getEnvAsInt64List("TELEGRAM_CHAT_IDS", nil),
			ChannelChatID: getEnvAsInt64("TELEGRAM_CHANNEL_ID", 0),
			Timeout:       getEnvAsDuration("TELEGRAM_TIMEOUT", 10*time.Second),
		},
		Analyzer: AnalyzerConfig{
			AuthKey:     getEnv("GIGACHAT_AUTH_KEY", ""),
			TokenURL:    getEnv("GIGACHAT_TOKEN_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
			APIURL:      getEnv("GIGACHAT_API_URL", "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"),
			Model:       getEnv("GIGACHAT_MODEL", "GigaChat"),
			Scope:       getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			MaxRetries:  getEnvAsInt("ANALYZER_MAX_RETRIES", 3),
			BackoffBase: getEnvAsFloat("ANALYZER_BACKOFF_BASE", 1.5),
			Timeout:     getEnvAsDuration("ANALYZER_TIMEOUT", 30*time.Second),
		},
		Gateway: GatewayConfig{
			Token:   getEnv("GATEWAY_TOKEN", ""),
			URL:     getEnv("GATEWAY_URL", ""),
			Stock:   getEnv("GATEWAY_STOCK", "binance_spot"),
			Timeout: getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),
		},
		Trading: TradingConfig{
			ImpactThreshold:   getEnvAsInt("IMPACT_THRESHOLD", 64),
			AllocateUSDT:      getEnvAsFloat("ALLOCATE_USDT", 10),
			SlippagePercent:   getEnvAsFloat("SLIPPAGE_PERCENT", 1.0),
			DefaultTakeProfit: getEnvAsFloat("DEFAULT_TAKE_PROFIT_PCT", 20),
			DefaultStopLoss:   getEnvAsFloat("DEFAULT_STOP_LOSS_PCT", 5),
			DefaultCoin:       getEnv("DEFAULT_COIN", "BTC"),
			QuoteCurrency:     getEnv("QUOTE_CURRENCY", "USDT"),
			PriceMaxRetries:   getEnvAsInt("PRICE_MAX_RETRIES", 3),
			PriceRetryDelay:   getEnvAsDuration("PRICE_RETRY_DELAY", 2*time.Second),
			MaxAttempts:       getEnvAsInt("LISTING_MAX_ATTEMPTS", 240),
			HTTPTimeout:       getEnvAsDuration("PRICE_HTTP_TIMEOUT", 10*time.Second),
		},
		Market: MarketConfig{
			SpotURL:    getEnv("MARKET_SPOT_URL", "https://api.binance.com"),
			FuturesURL: getEnv("MARKET_FUTURES_URL", "https://fapi.binance.com"),
			RateLimit:  getEnvAsFloat("MARKET_RATE_LIMIT", 10),
			RateBurst:  getEnvAsFloat("MARKET_RATE_BURST", 20),
		},
		News: NewsConfig{
			URL:      getEnv("NEWS_URL", "https://www.binance.com/bapi/composite/v1/public/cms/article/catalog/list/query"),
			PageSize: getEnvAsInt("NEWS_PAGE_SIZE", 10),
		},
		Pairs: PairsConfig{
			Pairs:           getEnvAsList("TRADING_PAIRS", []string{"BTC/ETH", "BTC/BNB", "ETH/SOL", "BNB/MATIC", "BNB/ADA"}),
			LookbackDays:    getEnvAsInt("PAIRS_LOOKBACK_DAYS", 30),
			MinDays:         getEnvAsInt("PAIRS_MIN_DAYS", 30),
			EntrySigma:      getEnvAsFloat("PAIRS_ENTRY_SIGMA", 2.0),
			StopLossSigma:   getEnvAsFloat("PAIRS_STOP_LOSS_SIGMA", 3.0),
			AllocatePerLeg:  getEnvAsFloat("PAIRS_ALLOCATE_USDT", 5),
			SlippagePercent: getEnvAsFloat("PAIRS_SLIPPAGE_PERCENT", 1.0),
		},
		Intervals: IntervalsConfig{
			News:         getEnvAsDuration("NEWS_INTERVAL", 5*time.Minute),
			Listings:     getEnvAsDuration("LISTINGS_INTERVAL", 30*time.Minute),
			Pairs:        getEnvAsDuration("PAIRS_INTERVAL", 1*time.Hour),
			StartupDelay: getEnvAsDuration("STARTUP_DELAY", 1*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет критичные параметры
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Trading.ImpactThreshold < 0 || c.Trading.ImpactThreshold > 100 {
		return fmt.Errorf("IMPACT_THRESHOLD must be between 0 and 100, got %d", c.Trading.ImpactThreshold)
	}
	if c.Trading.AllocateUSDT <= 0 {
		return fmt.Errorf("ALLOCATE_USDT must be positive, got %v", c.Trading.AllocateUSDT)
	}
	if c.Trading.SlippagePercent < 0 {
		return fmt.Errorf("SLIPPAGE_PERCENT cannot be negative, got %v", c.Trading.SlippagePercent)
	}
	if c.Trading.PriceMaxRetries < 1 {
		return fmt.Errorf("PRICE_MAX_RETRIES must be at least 1, got %d", c.Trading.PriceMaxRetries)
	}
	if c.Trading.MaxAttempts < 1 {
		return fmt.Errorf("LISTING_MAX_ATTEMPTS must be at least 1, got %d", c.Trading.MaxAttempts)
	}

	if c.Pairs.LookbackDays < 2 {
		return fmt.Errorf("PAIRS_LOOKBACK_DAYS must be at least 2, got %d", c.Pairs.LookbackDays)
	}
	if c.Pairs.EntrySigma <= 0 {
		return fmt.Errorf("PAIRS_ENTRY_SIGMA must be positive, got %v", c.Pairs.EntrySigma)
	}
	if c.Pairs.StopLossSigma <= c.Pairs.EntrySigma {
		return fmt.Errorf("PAIRS_STOP_LOSS_SIGMA (%v) must exceed PAIRS_ENTRY_SIGMA (%v)",
			c.Pairs.StopLossSigma, c.Pairs.EntrySigma)
	}
	if c.Pairs.AllocatePerLeg <= 0 {
		return fmt.Errorf("PAIRS_ALLOCATE_USDT must be positive, got %v", c.Pairs.AllocatePerLeg)
	}
	for _, p := range c.Pairs.Pairs {
		if !strings.Contains(p, "/") {
			return fmt.Errorf("TRADING_PAIRS entry %q must look like \"BTC/ETH\"", p)
		}
	}

	if c.Intervals.News <= 0 || c.Intervals.Listings <= 0 || c.Intervals.Pairs <= 0 {
		return fmt.Errorf("worker intervals must be positive")
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList читает список строк, разделенных запятыми
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// getEnvAsInt64List читает список int64, разделенных запятыми (chat id)
func getEnvAsInt64List(key string, defaultValue []int64) []int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		result = append(result, v)
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
