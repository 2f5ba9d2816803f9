package tx

import (
	"errors"
	"fmt"
)

func init() {
	Register(TypeAccountSet, func() Template {
		return &AccountSet{BaseTx: *NewBaseTx(TypeAccountSet, "")}
	})
}

// AccountSet flag values (asf = account set flag)
const (
	// AsfRequireAuth requires holders to be authorized and enables clawback
	AsfRequireAuth uint32 = 7
	// AsfDefaultRipple allows issued balances to ripple between holders
	AsfDefaultRipple uint32 = 8
)

// Issuer account defaults carried on every configuration transaction
const (
	issuerTickSize     uint8  = 5
	issuerTransferRate uint32 = 0
)

// AccountSet configures flags on an issuing account. The protocol carries a
// single SetFlag slot per transaction, so each configuration change names
// exactly one flag; CompileIssuerConfig emits one transaction per toggle.
type AccountSet struct {
	BaseTx

	// SetFlag names the single account flag to enable
	SetFlag *uint32 `json:"SetFlag,omitempty"`

	// ClearFlag names the single account flag to disable
	ClearFlag *uint32 `json:"ClearFlag,omitempty"`

	// TickSize is the quote grid granularity for offers against this issuer
	TickSize uint8 `json:"TickSize,omitempty"`

	// TransferRate is the issuer transfer fee (0 = no fee)
	TransferRate uint32 `json:"TransferRate"`
}

// NewAccountSet creates an AccountSet enabling a single account flag
func NewAccountSet(account string, setFlag uint32) *AccountSet {
	a := &AccountSet{
		BaseTx:       *NewBaseTx(TypeAccountSet, account),
		TickSize:     issuerTickSize,
		TransferRate: issuerTransferRate,
	}
	a.SetFlag = &setFlag
	return a
}

// TxType returns the transaction type
func (a *AccountSet) TxType() Type {
	return TypeAccountSet
}

// Validate validates the AccountSet transaction
func (a *AccountSet) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.SetFlag == nil && a.ClearFlag == nil {
		return errors.New("temMALFORMED: AccountSet requires SetFlag or ClearFlag")
	}
	if a.SetFlag != nil && a.ClearFlag != nil && *a.SetFlag == *a.ClearFlag {
		return errors.New("temINVALID_FLAG: cannot set and clear the same flag")
	}
	for _, f := range []*uint32{a.SetFlag, a.ClearFlag} {
		if f != nil && *f != AsfRequireAuth && *f != AsfDefaultRipple {
			return fmt.Errorf("temINVALID_FLAG: unsupported account flag %d", *f)
		}
	}
	return nil
}

// Summary returns a human-readable description
func (a *AccountSet) Summary() string {
	switch {
	case a.SetFlag != nil && *a.SetFlag == AsfRequireAuth:
		return "Enable Require Auth"
	case a.SetFlag != nil && *a.SetFlag == AsfDefaultRipple:
		return "Enable Default Ripple"
	case a.ClearFlag != nil && *a.ClearFlag == AsfRequireAuth:
		return "Disable Require Auth"
	case a.ClearFlag != nil && *a.ClearFlag == AsfDefaultRipple:
		return "Disable Default Ripple"
	}
	return "Issuer Configuration"
}

// CompileIssuerConfig translates the {requireAuth, defaultRipple} toggle pair
// into a sequence of AccountSet transactions, one per active toggle. The two
// flags cannot share one SetFlag slot, so both toggles active means two
// sequential transactions, never two values in one scalar field.
func CompileIssuerConfig(account string, requireAuth, defaultRipple bool) ([]*AccountSet, error) {
	if account == "" {
		return nil, ErrMissingAccount
	}
	var txs []*AccountSet
	if defaultRipple {
		txs = append(txs, NewAccountSet(account, AsfDefaultRipple))
	}
	if requireAuth {
		txs = append(txs, NewAccountSet(account, AsfRequireAuth))
	}
	return txs, nil
}

// DecodeIssuerFlags recovers the {requireAuth, defaultRipple} pair from a
// compiled configuration sequence. Inverse of CompileIssuerConfig.
func DecodeIssuerFlags(txs []*AccountSet) (requireAuth, defaultRipple bool) {
	for _, t := range txs {
		if t.SetFlag == nil {
			continue
		}
		switch *t.SetFlag {
		case AsfRequireAuth:
			requireAuth = true
		case AsfDefaultRipple:
			defaultRipple = true
		}
	}
	return requireAuth, defaultRipple
}
