package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a parsed amount literal. Sign is -1 or +1 when the literal carried an explicit
// sign (minus, plus, parentheses, trailing minus, CR or DR) and 0 otherwise.
type Amount struct {
	Value decimal.Decimal
	Sign  int
}

// ParseAmount converts statement amount text such as "1,234.56", "$ 12.00", "(45.10)",
// "45.10-" or "300.00 CR" to a decimal. Value is negative only for explicit negative literals.
func ParseAmount(text string) (Amount, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}

	sign := 0
	switch {
	case strings.HasSuffix(s, "CR"):
		sign = 1
		s = strings.TrimSpace(strings.TrimSuffix(s, "CR"))
	case strings.HasSuffix(s, "DR"):
		sign = -1
		s = strings.TrimSpace(strings.TrimSuffix(s, "DR"))
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		sign = -1
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		sign = -1
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		sign = 1
		s = s[1:]
	}
	if s == "" || strings.ContainsAny(s, "+-") {
		return Amount{}, fmt.Errorf("malformed amount %q", text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("malformed amount %q: %w", text, err)
	}
	if sign < 0 {
		d = d.Neg()
	}
	return Amount{Value: d, Sign: sign}, nil
}
