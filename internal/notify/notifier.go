// Package notify доставляет уведомления о новостях и сделках в Telegram.
//
// Уведомления best-effort: сбой доставки логируется и не влияет
// на торговый конвейер.
package notify

import (
	"context"

	"newstrader/internal/models"
)

// PairsDetails - детали уведомления парного монитора
type PairsDetails struct {
	Pair          string
	Direction     string
	CurrentRatio  float64
	TargetRatio   float64
	StopLossRatio float64
	Pnl           *float64 // заполняется при закрытии позиции
}

// Notifier - получатель уведомлений торгового конвейера
type Notifier interface {
	// NewsAlert отправляет полный разбор новости
	NewsAlert(ctx context.Context, article models.NewsArticle, analysis *models.Analysis)

	// TradeUpdate отправляет сокращенное сообщение о сделке
	// (отложенный листинг исполнен, заявка отменена и т.п.)
	TradeUpdate(ctx context.Context, title, coin string, hint models.TradeHint)

	// PairsAlert отправляет событие парной стратегии
	PairsAlert(ctx context.Context, text string, details PairsDetails)
}

// Nop - заглушка для тестов и запуска без Telegram
type Nop struct{}

func (Nop) NewsAlert(context.Context, models.NewsArticle, *models.Analysis) {}
func (Nop) TradeUpdate(context.Context, string, string, models.TradeHint)   {}
func (Nop) PairsAlert(context.Context, string, PairsDetails)                {}
