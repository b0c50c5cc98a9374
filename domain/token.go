package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// TokenRef designates the fungible asset gating a room.
// Decimals is the token's declared precision; balances travel as raw
// integer units of 10^-Decimals tokens.
type TokenRef struct {
	Contract Address `json:"contract"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
}

// ParseUnits converts a whole-token decimal string ("100", "0.5") into raw
// integer units at the given precision. Balances from different tokens must
// never be compared without going through this scaling.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty token amount")
	}

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d fractional digits", value, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	raw, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("malformed token amount %q", value)
	}
	return raw, nil
}

// FormatUnits renders raw integer units as a whole-token decimal string,
// keeping at most precision fractional digits.
func FormatUnits(raw *big.Int, decimals uint8, precision int) string {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quotient, remainder := new(big.Int).QuoRem(raw, divisor, new(big.Int))

	if precision <= 0 || decimals == 0 {
		return quotient.String()
	}
	frac := fmt.Sprintf("%0*s", decimals, remainder.String())
	if precision < len(frac) {
		frac = frac[:precision]
	}
	return quotient.String() + "." + frac
}
