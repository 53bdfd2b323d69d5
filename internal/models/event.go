package models

import "time"

// NewsArticle - новость из внешнего источника событий (Binance announcements)
type NewsArticle struct {
	ID    string `json:"id"`    // внешний код статьи (уникальный)
	Title string `json:"title"` // заголовок
	URL   string `json:"url"`   // ссылка на статью
}

// ProcessedEvent представляет обработанную новость
//
// Строка создается ровно один раз на внешний id после полной обработки
// новости, сразу с номером сделки, если она была создана (идемпотентная
// вставка, повторно увиденные id игнорируются). Строки никогда не
// мутируются и не удаляются.
type ProcessedEvent struct {
	ID          string     `json:"id" db:"id"`                       // внешний id новости
	Title       string     `json:"title" db:"title"`
	ProcessedAt time.Time  `json:"processed_at" db:"processed_at"`
	DealID      *int64     `json:"deal_id,omitempty" db:"deal_id"`   // id сделки в шлюзе (если была)
}
