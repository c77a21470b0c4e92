package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"salesight/internal/models"
)

// Headline renders the primary result for the headline panel. A value that
// parses as a number is rendered as currency; genuinely textual values
// (names, statuses) pass through unchanged. Numeric answers are never
// truncated to integers, textual answers never forced into a numeric shape.
func Headline(p models.Primary) string {
	if !p.IsText {
		return Currency(p.Number)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(p.Text), 64); err == nil {
		return Currency(f)
	}
	return p.Text
}

// Currency formats an amount with a currency prefix, grouped thousands and
// exactly two decimal places: 12345.6 -> "$12,345.60".
func Currency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	decPart := cents % 100

	intStr := strconv.FormatInt(intPart, 10)
	if len(intStr) > 3 {
		var parts []string
		for len(intStr) > 3 {
			parts = append([]string{intStr[len(intStr)-3:]}, parts...)
			intStr = intStr[:len(intStr)-3]
		}
		parts = append([]string{intStr}, parts...)
		intStr = strings.Join(parts, ",")
	}

	result := fmt.Sprintf("$%s.%02d", intStr, decPart)
	if negative {
		result = "-" + result
	}
	return result
}

// Int formats an integer with grouped thousands.
func Int(n int) string {
	if n < 0 {
		return "-" + Int(-n)
	}
	if n < 1000 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%s,%03d", Int(n/1000), n%1000)
}
