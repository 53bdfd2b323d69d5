package models

// Переходы статусов записей конвейера.
//
// Заявка очереди листингов живет по схеме pending -> completed | cancelled,
// парная позиция по схеме active -> closed. Терминальные статусы
// переходов не имеют.

// ListingTransitions определяет допустимые переходы заявки листинга
var ListingTransitions = map[string][]string{
	ListingStatusPending:   {ListingStatusCompleted, ListingStatusCancelled},
	ListingStatusCompleted: {},
	ListingStatusCancelled: {},
}

// PositionTransitions определяет допустимые переходы парной позиции
var PositionTransitions = map[string][]string{
	PositionStatusActive: {PositionStatusClosed},
	PositionStatusClosed: {},
}

// CanTransitionListing проверяет допустимость перехода заявки
func CanTransitionListing(from, to string) bool {
	return canTransition(ListingTransitions, from, to)
}

// CanTransitionPosition проверяет допустимость перехода позиции
func CanTransitionPosition(from, to string) bool {
	return canTransition(PositionTransitions, from, to)
}

func canTransition(table map[string][]string, from, to string) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalListing возвращает true для завершенной заявки
func IsTerminalListing(s string) bool {
	return s == ListingStatusCompleted || s == ListingStatusCancelled
}

// ListingStatusInfo возвращает описание статуса заявки для UI
func ListingStatusInfo(s string) string {
	switch s {
	case ListingStatusPending:
		return "Ожидает листинга на бирже"
	case ListingStatusCompleted:
		return "Сделка по листингу выставлена"
	case ListingStatusCancelled:
		return "Отменена: лимит попыток исчерпан"
	default:
		return "Неизвестный статус"
	}
}
