package tx

import (
	"errors"
	"fmt"
)

func init() {
	Register(TypeClawback, func() Template {
		return &Clawback{BaseTx: *NewBaseTx(TypeClawback, "")}
	})
}

// Clawback reclaims issued currency from a holder. Always issuer-initiated:
// the transaction account is the issuer and the destination is the holder
// being clawed back from.
type Clawback struct {
	BaseTx

	// Amount names the issued currency being reclaimed; its issuer must be
	// the transaction account
	Amount Amount `json:"Amount"`

	// Destination is the holder the balance is reclaimed from
	Destination string `json:"Destination"`
}

// NewClawback compiles a Clawback template
func NewClawback(issuer, holder, currency, amount string) (*Clawback, error) {
	c := &Clawback{
		BaseTx:      *NewBaseTx(TypeClawback, issuer),
		Amount:      NewIssuedAmount(amount, currency, issuer),
		Destination: holder,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// TxType returns the transaction type
func (c *Clawback) TxType() Type {
	return TypeClawback
}

// Validate validates the Clawback transaction
func (c *Clawback) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Destination == "" {
		return ErrMissingDestination
	}
	if c.Destination == c.Account {
		return errors.New("temDST_IS_SRC: cannot claw back from self")
	}
	if err := validateIssuedAmount(c.Amount); err != nil {
		return err
	}
	// The clawed-back currency must be the issuer's own
	if c.Amount.Issuer != c.Account {
		return errors.New("temBAD_ISSUER: clawback amount must name the issuing account")
	}
	return nil
}

// Summary returns a human-readable description
func (c *Clawback) Summary() string {
	return fmt.Sprintf("Clawback %s %s", c.Amount.Value, c.Amount.Currency)
}
