package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newstrader/internal/analyzer"
	"newstrader/internal/api"
	"newstrader/internal/bot"
	"newstrader/internal/config"
	"newstrader/internal/gateway"
	"newstrader/internal/market"
	"newstrader/internal/news"
	"newstrader/internal/notify"
	"newstrader/internal/repository"
	"newstrader/internal/websocket"

	_ "github.com/lib/pq"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.DSNWithoutPassword())

	if err := repository.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Репозитории
	eventRepo := repository.NewEventRepository(db)
	listingRepo := repository.NewListingRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	signalRepo := repository.NewSignalRepository(db)

	// Внешние клиенты
	marketHTTP := market.NewHTTPClient(market.DefaultHTTPClientConfig())
	marketClient := market.NewClient(cfg.Market, marketHTTP)
	newsClient := news.NewClient(cfg.News, marketHTTP)
	analyzerClient := analyzer.NewClient(cfg.Analyzer, &http.Client{Timeout: cfg.Analyzer.Timeout})
	gatewayClient := gateway.NewClient(cfg.Gateway, &http.Client{Timeout: cfg.Gateway.Timeout})

	// Уведомления
	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegramSender(cfg.Telegram, cfg.Trading.ImpactThreshold,
			&http.Client{Timeout: cfg.Telegram.Timeout})
		log.Println("Telegram уведомления включены")
	} else {
		log.Println("Telegram уведомления отключены (нет токена)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Движок конвейера
	engine := bot.NewEngine(bot.Deps{
		Config:    cfg,
		News:      newsClient,
		Analyzer:  analyzerClient,
		Market:    marketClient,
		Gateway:   gatewayClient,
		Events:    eventRepo,
		Listings:  listingRepo,
		Positions: positionRepo,
		Signals:   signalRepo,
		Notifier:  notifier,
		Hub:       hub,
	})
	engineDone := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(engineDone)
	}()

	// HTTP API мониторинга
	router := api.SetupRoutes(&api.Dependencies{
		Events:       eventRepo,
		Listings:     listingRepo,
		Positions:    positionRepo,
		Signals:      signalRepo,
		DB:           db,
		Hub:          hub,
		PasswordHash: cfg.Server.PasswordHash,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	select {
	case <-engineDone:
	case <-shutdownCtx.Done():
		log.Println("Воркеры конвейера не успели остановиться")
	}

	market.CloseIdleConnections(marketHTTP)
	log.Println("Server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
