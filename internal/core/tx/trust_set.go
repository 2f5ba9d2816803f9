package tx

import (
	"errors"
	"fmt"
	"math/bits"
)

func init() {
	Register(TypeTrustSet, func() Template {
		return &TrustSet{BaseTx: *NewBaseTx(TypeTrustSet, "")}
	})
}

// TrustSet transaction flags
const (
	// TfSetfAuth authorizes the counterparty to hold the currency
	TfSetfAuth uint32 = 0x00010000 // 65536
	// TfSetNoRipple blocks rippling on this trust line
	TfSetNoRipple uint32 = 0x00020000 // 131072
	// TfSetFreeze freezes the trust line
	TfSetFreeze uint32 = 0x00100000 // 1048576

	trustModeMask = TfSetfAuth | TfSetNoRipple | TfSetFreeze
)

// TrustMode selects which of the three mutually exclusive TrustSet
// behaviors a template encodes.
type TrustMode int

const (
	// TrustModeLimit sets an ordinary credit limit with rippling blocked
	TrustModeLimit TrustMode = iota
	// TrustModeAuthorize authorizes a holder; the limit is forced to zero
	TrustModeAuthorize
	// TrustModeFreeze freezes the holder's trust line
	TrustModeFreeze
)

// TrustSet creates or modifies a trust line between a holder and an issuer.
type TrustSet struct {
	BaseTx

	// LimitAmount defines the trust line; the issuer field is the account
	// whose currency is trusted
	LimitAmount Amount `json:"LimitAmount"`
}

// NewTrustSet compiles a TrustSet template in one of the three modes.
// Exactly one mode flag is set; TrustModeAuthorize forces the limit to "0"
// regardless of the limit argument.
func NewTrustSet(account string, mode TrustMode, currency, issuer, limit string) (*TrustSet, error) {
	if !ValidCurrencyCode(currency) {
		return nil, ErrBadCurrency
	}
	t := &TrustSet{
		BaseTx: *NewBaseTx(TypeTrustSet, account),
	}
	switch mode {
	case TrustModeAuthorize:
		t.LimitAmount = NewIssuedAmount("0", currency, issuer)
		t.SetFlags(TfSetfAuth)
	case TrustModeFreeze:
		t.LimitAmount = NewIssuedAmount(limit, currency, issuer)
		t.SetFlags(TfSetFreeze)
	case TrustModeLimit:
		t.LimitAmount = NewIssuedAmount(limit, currency, issuer)
		t.SetFlags(TfSetNoRipple)
	default:
		return nil, fmt.Errorf("temINVALID_FLAG: unknown trust mode %d", mode)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// TxType returns the transaction type
func (t *TrustSet) TxType() Type {
	return TypeTrustSet
}

// Mode reports which mode flag the template carries
func (t *TrustSet) Mode() (TrustMode, error) {
	switch t.GetFlags() & trustModeMask {
	case TfSetfAuth:
		return TrustModeAuthorize, nil
	case TfSetFreeze:
		return TrustModeFreeze, nil
	case TfSetNoRipple:
		return TrustModeLimit, nil
	}
	return 0, ErrInvalidFlags
}

// Validate validates the TrustSet transaction
func (t *TrustSet) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}

	// Exactly one mode flag per transaction
	if bits.OnesCount32(t.GetFlags()&trustModeMask) != 1 {
		return errors.New("temINVALID_FLAG: exactly one of auth/freeze/no-ripple must be set")
	}

	if t.LimitAmount.IsNative() {
		return errors.New("temBAD_LIMIT: cannot create trust line for the native currency")
	}
	if !ValidCurrencyCode(t.LimitAmount.Currency) {
		return ErrBadCurrency
	}
	if t.LimitAmount.Issuer == "" {
		return errors.New("temDST_NEEDED: issuer is required")
	}
	if t.LimitAmount.Issuer == t.Account {
		return errors.New("temDST_IS_SRC: cannot create trust line to self")
	}

	mode, err := t.Mode()
	if err != nil {
		return err
	}
	if mode == TrustModeAuthorize {
		if !t.LimitAmount.IsZero() {
			return errors.New("temBAD_LIMIT: authorize requires a zero limit")
		}
		return nil
	}
	if !t.LimitAmount.IsPositive() && !t.LimitAmount.IsZero() {
		return errors.New("temBAD_LIMIT: negative credit limit")
	}
	return nil
}

// Summary returns a human-readable description
func (t *TrustSet) Summary() string {
	mode, err := t.Mode()
	if err != nil {
		return "Trust Line Update"
	}
	switch mode {
	case TrustModeAuthorize:
		return fmt.Sprintf("Authorize TrustLine %s", t.LimitAmount.Currency)
	case TrustModeFreeze:
		return fmt.Sprintf("Freeze TrustLine %s", t.LimitAmount.Currency)
	default:
		return fmt.Sprintf("Set Trust %s", t.LimitAmount.Currency)
	}
}
