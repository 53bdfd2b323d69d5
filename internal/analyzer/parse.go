package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"newstrader/internal/models"
)

// parse.go - извлечение вердикта из ответа модели
//
// Модель просят отвечать чистым JSON, но на практике ответ бывает
// обёрнут в markdown или пояснительный текст, а названия ключей
// плавают между русским и английским. Парсер терпим к обоим.

// ErrNoJSONFound - в ответе модели не нашлось JSON объекта
var ErrNoJSONFound = errors.New("no JSON object found in model response")

var digits = regexp.MustCompile(`\d+`)

// extractBalancedJSON находит первый сбалансированный JSON объект в тексте.
// Скобки внутри строковых литералов не учитываются.
func extractBalancedJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// parseVerdict разбирает текст ответа модели в структуру Analysis
func parseVerdict(text string) (*models.Analysis, error) {
	raw, ok := extractBalancedJSON(text)
	if !ok {
		return nil, ErrNoJSONFound
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode verdict JSON: %w", err)
	}

	// Ключи нормализуются в нижний регистр: модель пишет их по-разному
	normalized := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}

	analysis := &models.Analysis{
		ImpactScore:   pickInt(normalized, "impact_score", "потенциал", "оценка"),
		Urgency:       pickString(normalized, "urgency"),
		Reasoning:     pickString(normalized, "reasoning", "обоснование"),
		Coin:          pickString(normalized, "coin", "монета"),
		TakeProfit:    pickString(normalized, "take_profit", "тейкпрофит", "тейк-профит"),
		StopLoss:      pickString(normalized, "stop_loss", "стоплосс", "стоп-лосс"),
		TradeDuration: pickString(normalized, "trade_duration", "срочность сделки", "срочность"),
	}

	if analysis.Urgency == "" {
		analysis.Urgency = models.UrgencyMedium
	}
	if analysis.Coin == "" {
		analysis.Coin = models.CoinUnspecified
	}

	if analysis.ImpactScore < 0 {
		analysis.ImpactScore = 0
	}
	if analysis.ImpactScore > 100 {
		analysis.ImpactScore = 100
	}

	return analysis, nil
}

// pickString возвращает первое непустое строковое значение по списку ключей
func pickString(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			switch val := v.(type) {
			case string:
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			case float64:
				return strconv.FormatFloat(val, 'f', -1, 64)
			}
		}
	}
	return ""
}

// pickInt возвращает первое числовое значение по списку ключей.
// Число может прийти как JSON number или как строка вида "85" / "85%".
func pickInt(fields map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return int(val)
		case string:
			if m := digits.FindString(val); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					return n
				}
			}
		}
	}
	return 0
}
