// Package core provides money parsing and handling utilities.
//
// Tunisian dinars are divided into 1000 millimes, so amounts are stored as
// integer millimes and converted to dinars only for display and analytics.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in millimes.
type Money struct {
	Millimes int64
}

func (m Money) Validate() error {
	if m.Millimes <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Dinars returns the amount in currency units.
func (m Money) Dinars() float64 {
	return float64(m.Millimes) / 1000.0
}

// MoneyFromDinars rounds half away from zero to the nearest millime.
func MoneyFromDinars(v float64) Money {
	if v < 0 {
		return Money{Millimes: -int64(-v*1000 + 0.5)}
	}
	return Money{Millimes: int64(v*1000 + 0.5)}
}

// ParseDecimalToMillimes converts a decimal string to millimes with half-up rounding.
//
// It accepts both dot (12.345) and comma (12,345) decimal separators and rounds
// on the fourth decimal place. Negative, zero and malformed values are rejected.
//
// Examples:
//
//	ParseDecimalToMillimes("12.5")    -> 12500, nil
//	ParseDecimalToMillimes("12,345")  -> 12345, nil
//	ParseDecimalToMillimes("0.0005")  -> 1, nil
func ParseDecimalToMillimes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 1000
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var frac int64
	scale := int64(100)
	for i := 0; i < len(fracPart) && i < 3; i++ {
		frac += int64(fracPart[i]-'0') * scale
		scale /= 10
	}
	if len(fracPart) > 3 && fracPart[3] >= '5' {
		frac++
	}
	millimes := iv*1000 + frac
	if millimes <= 0 {
		return 0, ErrInvalidAmount
	}
	return millimes, nil
}
