package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// MaxAmount is the largest amount, in minor units, any provider accepts.
	MaxAmount int64 = 99_999_999_999
	// MaxDescriptionLength is counted in characters, not bytes.
	MaxDescriptionLength = 1000
)

var (
	zeroDecimalCurrencies = []string{
		"BIF", "CLP", "DJF", "GNF", "ISK", "JPY", "KMF", "KRW", "MGA",
		"PYG", "RWF", "UGX", "VND", "VUV", "XAF", "XOF", "XPF",
	}
	threeDecimalCurrencies = []string{"BHD", "IQD", "JOD", "KWD", "LYD", "OMR", "TND"}
)

type Money struct {
	Amount   int64
	Currency string
}

func ValidateAmount(amount int64) error {
	if amount <= 0 || amount > MaxAmount {
		return NewInvalidAmountError(amount)
	}
	return nil
}

// NormalizeCurrency upper-cases the code and checks it is three ASCII letters.
func NormalizeCurrency(currency string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if len(normalized) != 3 {
		return "", NewInvalidCurrencyError(currency)
	}
	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return "", NewInvalidCurrencyError(currency)
		}
	}
	return normalized, nil
}

func ValidateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return NewInvalidDescriptionError(n)
	}
	return nil
}

// CurrencyDecimals returns the number of minor-unit digits for an ISO 4217 code.
func CurrencyDecimals(currency string) int {
	currency = strings.ToUpper(currency)
	switch {
	case slices.Contains(zeroDecimalCurrencies, currency):
		return 0
	case slices.Contains(threeDecimalCurrencies, currency):
		return 3
	default:
		return 2
	}
}

// FormatAmount renders minor units as a decimal string, e.g. 1050 EUR -> "10.50".
func FormatAmount(amount int64, currency string) string {
	decimals := CurrencyDecimals(currency)
	if decimals == 0 {
		return fmt.Sprintf("%d", amount)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	divisor := int64(1)
	for range decimals {
		divisor *= 10
	}

	return fmt.Sprintf("%s%d.%0*d", sign, amount/divisor, decimals, amount%divisor)
}
