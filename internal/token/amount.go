// Package token converts between display-unit decimal amounts and the
// token's smallest integer unit. Every comparison against on-chain values
// happens in smallest units with arbitrary precision; nothing here rounds.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrMalformedAmount = errors.New("amount is not a valid decimal number")
	ErrNegativeAmount  = errors.New("amount must be positive")
)

// ParseUnits converts a decimal string such as "2.5" into the smallest-unit
// integer, e.g. 2500000000000000000 at 18 decimals. Fractional digits beyond
// the token's precision are an error, never silently truncated.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return nil, ErrMalformedAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (hasFrac && fracPart != "" && !isDigits(fracPart)) {
		return nil, ErrMalformedAmount
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("%w: more than %d fractional digits", ErrMalformedAmount, decimals)
	}

	// Scale by padding the fraction out to the full precision.
	padded := intPart + fracPart + strings.Repeat("0", decimals-len(fracPart))
	v, ok := new(big.Int).SetString(padded, 10)
	if !ok {
		return nil, ErrMalformedAmount
	}
	if v.Sign() == 0 {
		return nil, ErrNegativeAmount
	}
	return v, nil
}

// FormatUnits renders a smallest-unit value as a decimal display string with
// trailing fractional zeros trimmed, e.g. 2500000000000000000 @ 18 → "2.5".
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	v := new(big.Int).Abs(value)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(v, scale, new(big.Int))

	out := quo.String()
	if rem.Sign() != 0 {
		fracStr := rem.String()
		if len(fracStr) < decimals {
			fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
		}
		out += "." + strings.TrimRight(fracStr, "0")
	}
	if value.Sign() < 0 {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
