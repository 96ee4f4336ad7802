package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCurrencyInput converts a user-typed amount into integer cents.
// Input uses the Brazilian convention: "." as thousands separator, "," as
// decimal separator (e.g. "1.234,56" with decimals=2 gives 123456).
// Thousands separators are removed before parsing, the result is scaled by
// 10^decimals and rounded to the nearest integer. An empty string means
// "unanswered" and returns (nil-equivalent) ok=false without error.
func ParseCurrencyInput(input string, decimals int) (cents int64, ok bool, err error) {
	clean := strings.TrimSpace(input)
	if clean == "" {
		return 0, false, nil
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid currency input '%s'", input)
	}
	if value < 0 {
		return 0, false, fmt.Errorf("currency amount must not be negative: '%s'", input)
	}

	cents = int64(math.Round(value * math.Pow10(decimals)))
	return cents, true, nil
}

// FormatCurrencyCents derives the display string for stored cents: plain
// numeric form with exactly `decimals` fraction digits and no thousands
// grouping (123456 with decimals=2 gives "1234.56").
func FormatCurrencyCents(cents int64, decimals int) string {
	value := float64(cents) / math.Pow10(decimals)
	return strconv.FormatFloat(value, 'f', decimals, 64)
}
