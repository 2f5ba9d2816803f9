package tx

import "errors"

// Common errors
var (
	ErrMissingAccount     = errors.New("temMALFORMED: Account is required")
	ErrMissingDestination = errors.New("temDST_NEEDED: Destination is required")
	ErrInvalidFlags       = errors.New("temINVALID_FLAG: invalid flags")
)

// StandardFee is the fixed per-transaction cost in drops for ordinary
// transaction types. AMMCreate carries its own higher cost.
const StandardFee = "12"

// Template is the interface every transaction template implements.
// Templates are pure values: compiling one never touches ledger state.
type Template interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks that the template obeys the wire-format contract.
	// A template that fails validation must never be submitted.
	Validate() error

	// Summary returns a short human-readable description derived from the
	// transaction's type and key fields, e.g. "Sent 500 EUR".
	Summary() string
}

// Common contains fields shared by all transaction types
type Common struct {
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`

	// Fee in drops
	Fee string `json:"Fee,omitempty"`

	// Optional common fields
	Flags              *uint32 `json:"Flags,omitempty"`
	Sequence           *uint32 `json:"Sequence,omitempty"`
	LastLedgerSequence *uint32 `json:"LastLedgerSequence,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	if c.TransactionType == "" {
		return errors.New("temMALFORMED: TransactionType is required")
	}
	return nil
}

// SetFlags sets the flags field
func (c *Common) SetFlags(flags uint32) {
	c.Flags = &flags
}

// GetFlags returns the flags value (0 if not set)
func (c *Common) GetFlags() uint32 {
	if c.Flags == nil {
		return 0
	}
	return *c.Flags
}

// BaseTx provides a base implementation for transaction templates
type BaseTx struct {
	Common
	txType Type
}

// NewBaseTx creates a new base transaction with the standard fee
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
			Fee:             StandardFee,
		},
		txType: txType,
	}
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}
