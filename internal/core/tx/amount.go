package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	// DropsPerUnit is the number of drops in one unit of the native currency
	DropsPerUnit int64 = 1_000_000

	// Maximum fractional digits representable in drops
	maxNativePrecision = 6
)

var (
	ErrBadCurrency  = errors.New("temBAD_CURRENCY: currency code must be 3-4 uppercase letters")
	ErrBadAmount    = errors.New("temBAD_AMOUNT: amount must be a positive decimal")
	ErrBadPrecision = errors.New("temBAD_AMOUNT: native amount exceeds 6 decimal places")
)

// Amount represents either a native amount (drops) or an issued currency
// amount. Native amounts serialize as a plain drops string; issued amounts
// serialize as a {currency, issuer, value} object.
type Amount struct {
	// Value is the drops string for native amounts, a decimal string otherwise
	Value string

	// Currency and Issuer identify the issued currency; empty for native
	Currency string
	Issuer   string

	// Native indicates native currency (true) or issued currency (false)
	Native bool
}

// NewNativeAmount creates a native amount from drops
func NewNativeAmount(drops int64) Amount {
	return Amount{Value: strconv.FormatInt(drops, 10), Native: true}
}

// NewIssuedAmount creates an issued currency amount from a decimal value string
func NewIssuedAmount(value, currency, issuer string) Amount {
	return Amount{Value: value, Currency: currency, Issuer: issuer}
}

// IsNative reports whether the amount is denominated in the native currency
func (a Amount) IsNative() bool {
	return a.Native
}

// IsZero reports whether the amount has a zero value
func (a Amount) IsZero() bool {
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return a.Value == ""
	}
	return d.IsZero()
}

// IsPositive reports whether the amount parses as a strictly positive decimal
func (a Amount) IsPositive() bool {
	d, err := decimal.NewFromString(a.Value)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// Drops returns the native amount in drops. It fails on issued amounts.
func (a Amount) Drops() (int64, error) {
	if !a.Native {
		return 0, errors.New("not a native amount")
	}
	return strconv.ParseInt(a.Value, 10, 64)
}

// MarshalJSON emits the dual wire representation: drops string for native,
// {currency, issuer, value} for issued currencies.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Native {
		return json.Marshal(a.Value)
	}
	return json.Marshal(map[string]string{
		"currency": a.Currency,
		"issuer":   a.Issuer,
		"value":    a.Value,
	})
}

// UnmarshalJSON accepts both wire representations
func (a *Amount) UnmarshalJSON(data []byte) error {
	var drops string
	if err := json.Unmarshal(data, &drops); err == nil {
		if _, err := strconv.ParseInt(drops, 10, 64); err != nil {
			return fmt.Errorf("invalid drops value %q: %w", drops, err)
		}
		*a = Amount{Value: drops, Native: true}
		return nil
	}

	var obj struct {
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = Amount{Value: obj.Value, Currency: obj.Currency, Issuer: obj.Issuer}
	return nil
}

// DropsFromDecimal converts a decimal unit string to drops exactly.
// The conversion never rounds: values with more than 6 fractional digits
// are rejected rather than truncated.
func DropsFromDecimal(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, value)
	}
	shifted := d.Shift(maxNativePrecision)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %q", ErrBadPrecision, value)
	}
	return shifted.IntPart(), nil
}

// DecimalFromDrops converts drops back to a decimal unit string.
// Round-trips DropsFromDecimal within 6-decimal precision.
func DecimalFromDrops(drops int64) string {
	return decimal.New(drops, -maxNativePrecision).String()
}

// ValidCurrencyCode reports whether code is a well-formed 3-4 character
// uppercase currency code. The native currency name is not a valid issued
// currency code.
func ValidCurrencyCode(code string) bool {
	if len(code) < 3 || len(code) > 4 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return code != "XRP"
}

// validateIssuedAmount checks an issued amount for a positive value and a
// well-formed currency/issuer pair.
func validateIssuedAmount(a Amount) error {
	if a.Native {
		return errors.New("temBAD_AMOUNT: expected an issued currency amount")
	}
	if !ValidCurrencyCode(a.Currency) {
		return ErrBadCurrency
	}
	if a.Issuer == "" {
		return errors.New("temDST_NEEDED: issuer is required")
	}
	if !a.IsPositive() {
		return ErrBadAmount
	}
	return nil
}
