package entity

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are integers in the signed 128-bit range.
var (
	MaxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)), 0)
	MinAmount = decimal.NewFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)), 0)
)

const (
	// 2^127 has 39 digits; one more leaves room for a sign.
	maxAmountDigits = 40
	// Exponent bound applied before any arithmetic on a decimal.
	maxAmountExponent = 40
	maxQuotedInput    = 48
)

// ParseAmount parses a base-10 integer amount, optionally followed by a
// fraction of zeros ("100.00"). Anything else, including exponent notation,
// is rejected with ErrInvalidAmount before reaching the decimal parser.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, ErrMissingAmount
	}

	if !isPlainInteger(s) {
		return decimal.Zero, fmt.Errorf("%w: %s is not a plain integer", ErrInvalidAmount, quoteInput(s))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", ErrInvalidAmount, quoteInput(s))
	}

	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// isPlainInteger accepts an optional leading '-', 1..40 digits and an
// optional '.' followed by 1..40 zeros.
func isPlainInteger(s string) bool {
	intPart, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if len(intPart) == 0 || len(intPart) > maxAmountDigits {
		return false
	}
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return false
		}
	}

	if !hasFrac {
		return true
	}
	if len(frac) == 0 || len(frac) > maxAmountDigits {
		return false
	}
	return strings.Trim(frac, "0") == ""
}

func quoteInput(s string) string {
	if len(s) > maxQuotedInput {
		return fmt.Sprintf("%q...", s[:maxQuotedInput])
	}
	return fmt.Sprintf("%q", s)
}

// CheckAmount verifies that d is integral and fits in 128 bits.
func CheckAmount(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return fmt.Errorf("%w: exponent %d out of range", ErrInvalidAmount, exp)
	}
	if !d.IsInteger() {
		return fmt.Errorf("%w: amount is not an integer", ErrInvalidAmount)
	}
	if d.GreaterThan(MaxAmount) || d.LessThan(MinAmount) {
		return fmt.Errorf("%w: amount exceeds 128-bit range", ErrInvalidAmount)
	}
	return nil
}

// CheckPositive verifies that d is a valid amount strictly greater than zero.
func CheckPositive(d decimal.Decimal) error {
	if err := CheckAmount(d); err != nil {
		return err
	}
	if !d.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, d.String())
	}
	return nil
}

// FormatAmount renders an amount as a plain integer string.
func FormatAmount(d decimal.Decimal) string {
	return d.Truncate(0).String()
}
