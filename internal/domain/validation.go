package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinorUnitDigits    = 2
	MaxTransferAmount  = "100000000000" // 100 billion
	CardNumberLength   = 16
	MinIBANLength      = 15
	MaxIBANLength      = 34
	DefaultHistorySize = 20
	MaxHistorySize     = 500
)

var (
	cardNumberRegex = regexp.MustCompile(`^[0-9]{16}$`)
	ibanRegex       = regexp.MustCompile(`^[A-Z0-9]{15,34}$`)
	maxAmount       = decimal.RequireFromString(MaxTransferAmount)
)

// ValidateAmount validates a transfer amount: positive, at most
// MinorUnitDigits fraction digits and not above MaxTransferAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(MinorUnitDigits)) {
		return ErrAmountPrecision
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidateCardNumber validates a 16 digit card number.
func ValidateCardNumber(card string) error {
	if !cardNumberRegex.MatchString(card) {
		return fmt.Errorf("%w: card number must be %d digits", ErrInvalidReference, CardNumberLength)
	}
	return nil
}

// ValidateIBAN validates an upper-case alphanumeric IBAN.
func ValidateIBAN(iban string) error {
	if !ibanRegex.MatchString(iban) {
		return fmt.Errorf("%w: IBAN must be %d-%d upper-case letters or digits", ErrInvalidReference, MinIBANLength, MaxIBANLength)
	}
	return nil
}

// NormalizeIBAN strips spaces and upper-cases an IBAN as typed by a customer.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

// ValidateHistoryLimit clamps a requested history size.
func ValidateHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistorySize
	}

	if limit > MaxHistorySize {
		return MaxHistorySize
	}

	return limit
}
