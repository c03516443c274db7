package currency

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a decimal string such as "1.25" into base units of a
// currency with the given number of decimals.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	whole, frac, hasDot := strings.Cut(value, ".")
	if hasDot && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has %d, max %d", ErrTooManyDecimals, value, len(frac), decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	raw, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return raw, nil
}

// FormatUnits renders base units as a decimal string, trimming trailing zeros.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return ""
	}
	neg := raw.Sign() < 0
	s := new(big.Int).Abs(raw).String()
	if decimals > 0 {
		if len(s) <= int(decimals) {
			s = strings.Repeat("0", int(decimals)-len(s)+1) + s
		}
		cut := len(s) - int(decimals)
		whole, frac := s[:cut], strings.TrimRight(s[cut:], "0")
		s = whole
		if frac != "" {
			s += "." + frac
		}
	}
	if neg {
		s = "-" + s
	}
	return s
}

// TryParseAmount parses a typed value for c. It returns nil when either input
// is missing, the value does not parse, or the value is zero.
func TryParseAmount(value string, c *Currency) *Amount {
	if value == "" || c == nil {
		return nil
	}
	raw, err := ParseUnits(value, c.Decimals)
	if err != nil || raw.Sign() == 0 {
		return nil
	}
	return &Amount{Currency: c, Raw: raw}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
