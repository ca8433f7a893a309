package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidValor = errors.New("invalid amount")

// Money is a monetary amount in integer centavos. All arithmetic happens on
// cents; floats only appear at presentation time.
type Money struct {
	Cents int64
}

// Reais returns the value in reais as a float64, for charts and display only.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimal places ("1234.56").
func (m Money) String() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON renders the amount as a plain JSON number in reais.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	parsed, err := ParseValor(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseValor converts a positive decimal string to Money with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) decimal
// separators are accepted.
func ParseValor(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidValor
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// only positive values allowed
		return Money{}, ErrInvalidValor
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidValor
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
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidValor
		}
	}

	var iv int64
	for _, r := range intPart {
		d := int64(r - '0')
		const maxSafeInt64 = ((1 << 63) - 1) / 100
		if iv > (maxSafeInt64-d)/10 {
			return Money{}, ErrInvalidValor
		}
		iv = iv*10 + d
	}

	// first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return Money{}, ErrInvalidValor
	}
	return Money{Cents: cents}, nil
}
