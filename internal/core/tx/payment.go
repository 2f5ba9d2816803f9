package tx

import (
	"fmt"
)

func init() {
	Register(TypePayment, func() Template {
		return &Payment{BaseTx: *NewBaseTx(TypePayment, "")}
	})
}

// Payment transfers native or issued currency to a destination account.
// A payment whose issued amount names the sending account as issuer is an
// issuance: it creates supply rather than moving an existing balance.
type Payment struct {
	BaseTx

	// Destination receives the payment
	Destination string `json:"Destination"`

	// Amount is the delivered amount: drops string for native, issued triple
	// otherwise
	Amount Amount `json:"Amount"`

	// SendMax caps what the source is willing to spend (optional)
	SendMax *Amount `json:"SendMax,omitempty"`

	// DeliverMin is the minimum guaranteed delivery (optional)
	DeliverMin *Amount `json:"DeliverMin,omitempty"`
}

// NewNativePayment compiles a native-currency payment. The amount is a
// decimal unit string converted exactly to drops.
func NewNativePayment(account, destination, amount string) (*Payment, error) {
	drops, err := DropsFromDecimal(amount)
	if err != nil {
		return nil, err
	}
	p := &Payment{
		BaseTx:      *NewBaseTx(TypePayment, account),
		Destination: destination,
		Amount:      NewNativeAmount(drops),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewIssuedPayment compiles an issued-currency payment
func NewIssuedPayment(account, destination, currency, issuer, amount string) (*Payment, error) {
	p := &Payment{
		BaseTx:      *NewBaseTx(TypePayment, account),
		Destination: destination,
		Amount:      NewIssuedAmount(amount, currency, issuer),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// WithSendMax sets the maximum source spend
func (p *Payment) WithSendMax(a Amount) *Payment {
	p.SendMax = &a
	return p
}

// WithDeliverMin sets the minimum guaranteed delivery
func (p *Payment) WithDeliverMin(a Amount) *Payment {
	p.DeliverMin = &a
	return p
}

// TxType returns the transaction type
func (p *Payment) TxType() Type {
	return TypePayment
}

// IsIssuance reports whether this payment is a self-referential issuance:
// an issued amount whose issuer is the sending account.
func (p *Payment) IsIssuance() bool {
	return !p.Amount.IsNative() && p.Amount.Issuer == p.Account
}

// Validate validates the Payment transaction
func (p *Payment) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.Destination == "" {
		return ErrMissingDestination
	}
	if p.Amount.IsNative() {
		drops, err := p.Amount.Drops()
		if err != nil || drops <= 0 {
			return ErrBadAmount
		}
	} else if err := validateIssuedAmount(p.Amount); err != nil {
		return err
	}
	for _, opt := range []*Amount{p.SendMax, p.DeliverMin} {
		if opt == nil {
			continue
		}
		if !opt.IsPositive() {
			return ErrBadAmount
		}
	}
	return nil
}

// Summary returns a human-readable description, e.g. "Sent 500 EUR"
func (p *Payment) Summary() string {
	if p.Amount.IsNative() {
		drops, err := p.Amount.Drops()
		if err != nil {
			return "Payment"
		}
		return fmt.Sprintf("Sent %s XRP", DecimalFromDrops(drops))
	}
	if p.IsIssuance() {
		return fmt.Sprintf("Issued %s %s", p.Amount.Value, p.Amount.Currency)
	}
	return fmt.Sprintf("Sent %s %s", p.Amount.Value, p.Amount.Currency)
}
