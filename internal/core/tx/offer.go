package tx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	Register(TypeOfferCreate, func() Template {
		return &OfferCreate{BaseTx: *NewBaseTx(TypeOfferCreate, "")}
	})
}

// TfSell marks a sell offer: the canonical flag distinguishing "sell base
// for quote" from "buy base with quote".
const TfSell uint32 = 0x00080000 // 524288

// OrderSide is the direction of a limit order against the base currency
type OrderSide int

const (
	// SideBuy buys the base currency with the quote currency
	SideBuy OrderSide = iota
	// SideSell sells the base currency for the quote currency
	SideSell
)

// String returns the display name of the side
func (s OrderSide) String() string {
	if s == SideSell {
		return "Sell"
	}
	return "Buy"
}

// OfferCreate places a limit order on the order book.
//
// The side decides which leg is TakerPays and which is TakerGets:
//
//	Buy base with quote:  TakerPays = base (drops), TakerGets = quote triple
//	Sell base for quote:  TakerPays = quote triple, TakerGets = base (drops)
//
// Reversing the mapping silently inverts the trade, so the compiler owns it.
type OfferCreate struct {
	BaseTx

	// TakerPays is what the offer creator wants to receive
	TakerPays Amount `json:"TakerPays"`

	// TakerGets is what the offer creator gives up
	TakerGets Amount `json:"TakerGets"`
}

// NewOfferCreate compiles a limit order. baseAmount is a decimal unit string
// of the native base currency; the quote leg value is baseAmount x price
// rendered with four decimal places.
func NewOfferCreate(account string, side OrderSide, quoteCurrency, quoteIssuer, baseAmount, price string) (*OfferCreate, error) {
	drops, err := DropsFromDecimal(baseAmount)
	if err != nil {
		return nil, err
	}
	if drops <= 0 {
		return nil, ErrBadAmount
	}
	amt, err := decimal.NewFromString(baseAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, baseAmount)
	}
	px, err := decimal.NewFromString(price)
	if err != nil || !px.IsPositive() {
		return nil, fmt.Errorf("%w: price %q", ErrBadAmount, price)
	}

	base := NewNativeAmount(drops)
	quote := NewIssuedAmount(amt.Mul(px).StringFixed(4), quoteCurrency, quoteIssuer)

	o := &OfferCreate{BaseTx: *NewBaseTx(TypeOfferCreate, account)}
	if side == SideSell {
		o.TakerPays = quote
		o.TakerGets = base
		o.SetFlags(TfSell)
	} else {
		o.TakerPays = base
		o.TakerGets = quote
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// TxType returns the transaction type
func (o *OfferCreate) TxType() Type {
	return TypeOfferCreate
}

// Side reports the order side encoded in the flags
func (o *OfferCreate) Side() OrderSide {
	if o.GetFlags()&TfSell != 0 {
		return SideSell
	}
	return SideBuy
}

// Validate validates the OfferCreate transaction
func (o *OfferCreate) Validate() error {
	if err := o.BaseTx.Validate(); err != nil {
		return err
	}
	// Exactly one leg is native; the other is an issued triple
	if o.TakerPays.IsNative() == o.TakerGets.IsNative() {
		return fmt.Errorf("temBAD_OFFER: offer must pair native and issued legs")
	}
	for _, leg := range []Amount{o.TakerPays, o.TakerGets} {
		if leg.IsNative() {
			drops, err := leg.Drops()
			if err != nil || drops <= 0 {
				return ErrBadAmount
			}
			continue
		}
		if err := validateIssuedAmount(leg); err != nil {
			return err
		}
	}
	return nil
}

// Summary returns a human-readable description, e.g. "Buy Limit Order"
func (o *OfferCreate) Summary() string {
	return fmt.Sprintf("%s Limit Order", o.Side())
}
