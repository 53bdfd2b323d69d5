package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// duration.go - разбор срочности сделки из ответа модели
//
// Поле приходит в свободной форме: "3 дня", "2-5 дней", "1 неделя",
// "1-2 недели", "1 месяц". Для диапазона берётся верхняя граница,
// чтобы не закрыть сделку раньше времени.

// DefaultTradeDuration - срок сделки по умолчанию (7 дней),
// когда срочность не удалось разобрать
const DefaultTradeDuration = 7 * 24 * time.Hour

var durationPattern = regexp.MustCompile(`(?i)(\d+)(?:\s*[-–]\s*(\d+))?\s*(дн|недел|мес|day|week|month)`)

// ParseTradeDuration переводит текстовую срочность сделки в длительность.
// Диапазон "2-5 дней" даёт 5 дней. Нераспознанный текст даёт def.
func ParseTradeDuration(text string, def time.Duration) time.Duration {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return def
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return def
	}
	if m[2] != "" {
		if upper, err := strconv.Atoi(m[2]); err == nil {
			n = upper
		}
	}

	day := 24 * time.Hour
	switch strings.ToLower(m[3]) {
	case "дн", "day":
		return time.Duration(n) * day
	case "недел", "week":
		return time.Duration(n) * 7 * day
	case "мес", "month":
		return time.Duration(n) * 30 * day
	}
	return def
}
