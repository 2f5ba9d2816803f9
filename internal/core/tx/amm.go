package tx

import (
	"errors"
	"fmt"
)

func init() {
	Register(TypeAMMCreate, func() Template {
		return &AMMCreate{BaseTx: *NewBaseTx(TypeAMMCreate, "")}
	})
	Register(TypeAMMDeposit, func() Template {
		return &AMMDeposit{BaseTx: *NewBaseTx(TypeAMMDeposit, "")}
	})
	Register(TypeAMMWithdraw, func() Template {
		return &AMMWithdraw{BaseTx: *NewBaseTx(TypeAMMWithdraw, "")}
	})
}

// AMM transaction flags
const (
	// TfLPToken redeems a proportional share by liquidity-pool-token amount
	TfLPToken uint32 = 0x00010000 // 65536
	// TfWithdrawAll exits the holder's entire position
	TfWithdrawAll uint32 = 0x00020000 // 131072
	// TfSingleAsset deposits exactly one side of the pair
	TfSingleAsset uint32 = 0x00080000 // 524288
	// TfTwoAsset deposits both sides of the pair
	TfTwoAsset uint32 = 0x00100000 // 1048576
)

const (
	// TradingFeeMax is the maximum trading fee in basis points
	TradingFeeMax uint16 = 65000

	// AMMCreateFee is the fixed transaction cost in drops for creating a
	// pool, reflecting the higher-cost ledger object
	AMMCreateFee = "200000"
)

// DepositStrategy selects how an AMMDeposit supplies liquidity
type DepositStrategy int

const (
	// DepositBalanced supplies both sides of the pair; the amounts are
	// maximums, paired at the pool's reserve ratio on apply
	DepositBalanced DepositStrategy = iota
	// DepositSingleAsset supplies exactly one side
	DepositSingleAsset
)

// WithdrawMode selects how an AMMWithdraw redeems liquidity
type WithdrawMode int

const (
	// WithdrawProportional redeems by liquidity-pool-token amount
	WithdrawProportional WithdrawMode = iota
	// WithdrawFullExit removes the holder's entire position
	WithdrawFullExit
)

// AssetRef identifies one side of a pool pair without an amount
type AssetRef struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
}

// AMMCreate creates a new pool fixing both initial reserves and the
// trading fee.
type AMMCreate struct {
	BaseTx

	// Amount is the native side of the new pool
	Amount Amount `json:"Amount"`

	// Amount2 is the issued side of the new pool
	Amount2 Amount `json:"Amount2"`

	// TradingFee in basis points (0-65000)
	TradingFee uint16 `json:"TradingFee"`
}

// NewAMMCreate compiles an AMMCreate template. The native amount is a
// decimal unit string; the issued amount is a decimal value string.
func NewAMMCreate(account, currency, issuer, nativeAmount, issuedAmount string, tradingFee uint16) (*AMMCreate, error) {
	drops, err := DropsFromDecimal(nativeAmount)
	if err != nil {
		return nil, err
	}
	a := &AMMCreate{
		BaseTx:     *NewBaseTx(TypeAMMCreate, account),
		Amount:     NewNativeAmount(drops),
		Amount2:    NewIssuedAmount(issuedAmount, currency, issuer),
		TradingFee: tradingFee,
	}
	a.Fee = AMMCreateFee
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// TxType returns the transaction type
func (a *AMMCreate) TxType() Type {
	return TypeAMMCreate
}

// Validate validates the AMMCreate transaction
func (a *AMMCreate) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.GetFlags() != 0 {
		return ErrInvalidFlags
	}
	if a.TradingFee > TradingFeeMax {
		return fmt.Errorf("temBAD_FEE: TradingFee must be 0-%d", TradingFeeMax)
	}
	drops, err := a.Amount.Drops()
	if err != nil || drops <= 0 {
		return ErrBadAmount
	}
	if err := validateIssuedAmount(a.Amount2); err != nil {
		return err
	}
	if a.Fee != AMMCreateFee {
		return errors.New("temBAD_FEE: AMMCreate carries the pool-creation cost")
	}
	return nil
}

// Summary returns a human-readable description
func (a *AMMCreate) Summary() string {
	return fmt.Sprintf("Create Pool XRP/%s", a.Amount2.Currency)
}

// AMMDeposit adds liquidity to an existing pool. The strategy selects the
// flag; field presence alone never does.
type AMMDeposit struct {
	BaseTx

	// Asset and Asset2 identify the pool pair
	Asset  AssetRef `json:"Asset"`
	Asset2 AssetRef `json:"Asset2"`

	// Amount is the native side contribution (balanced or single-asset)
	Amount *Amount `json:"Amount,omitempty"`

	// Amount2 is the issued side contribution (balanced only)
	Amount2 *Amount `json:"Amount2,omitempty"`
}

// NewAMMDeposit compiles an AMMDeposit template. For DepositBalanced both
// amounts are required; for DepositSingleAsset exactly one must be supplied
// (the other empty).
func NewAMMDeposit(account, currency, issuer string, strategy DepositStrategy, nativeAmount, issuedAmount string) (*AMMDeposit, error) {
	d := &AMMDeposit{
		BaseTx: *NewBaseTx(TypeAMMDeposit, account),
		Asset:  AssetRef{Currency: "XRP"},
		Asset2: AssetRef{Currency: currency, Issuer: issuer},
	}

	if nativeAmount != "" {
		drops, err := DropsFromDecimal(nativeAmount)
		if err != nil {
			return nil, err
		}
		n := NewNativeAmount(drops)
		d.Amount = &n
	}
	if issuedAmount != "" {
		iss := NewIssuedAmount(issuedAmount, currency, issuer)
		d.Amount2 = &iss
	}

	switch strategy {
	case DepositBalanced:
		d.SetFlags(TfTwoAsset)
	case DepositSingleAsset:
		d.SetFlags(TfSingleAsset)
	default:
		return nil, fmt.Errorf("temINVALID_FLAG: unknown deposit strategy %d", strategy)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// TxType returns the transaction type
func (d *AMMDeposit) TxType() Type {
	return TypeAMMDeposit
}

// Strategy reports the deposit strategy encoded in the flags
func (d *AMMDeposit) Strategy() (DepositStrategy, error) {
	switch d.GetFlags() & (TfTwoAsset | TfSingleAsset) {
	case TfTwoAsset:
		return DepositBalanced, nil
	case TfSingleAsset:
		return DepositSingleAsset, nil
	}
	return 0, ErrInvalidFlags
}

// Validate validates the AMMDeposit transaction. The strategy flag and the
// supplied fields must agree: balanced requires both sides, single-asset
// exactly one.
func (d *AMMDeposit) Validate() error {
	if err := d.BaseTx.Validate(); err != nil {
		return err
	}
	if !ValidCurrencyCode(d.Asset2.Currency) {
		return ErrBadCurrency
	}

	strategy, err := d.Strategy()
	if err != nil {
		return err
	}

	for _, amt := range []*Amount{d.Amount, d.Amount2} {
		if amt != nil && !amt.IsPositive() {
			return ErrBadAmount
		}
	}

	switch strategy {
	case DepositBalanced:
		if d.Amount == nil || d.Amount2 == nil {
			return errors.New("temMALFORMED: balanced deposit requires both sides")
		}
	case DepositSingleAsset:
		if (d.Amount == nil) == (d.Amount2 == nil) {
			return errors.New("temMALFORMED: single-asset deposit requires exactly one side")
		}
	}
	return nil
}

// Summary returns a human-readable description
func (d *AMMDeposit) Summary() string {
	return fmt.Sprintf("Pool: %s/%s", d.Asset.Currency, d.Asset2.Currency)
}

// AMMWithdraw removes liquidity from a pool, either proportionally by
// liquidity-pool-token amount or as a full exit.
type AMMWithdraw struct {
	BaseTx

	// Asset and Asset2 identify the pool pair
	Asset  AssetRef `json:"Asset"`
	Asset2 AssetRef `json:"Asset2"`

	// LPTokenIn is the liquidity-pool-token amount to redeem
	// (proportional mode only)
	LPTokenIn *Amount `json:"LPTokenIn,omitempty"`
}

// NewAMMWithdraw compiles an AMMWithdraw template. WithdrawProportional
// requires an LP-token amount; WithdrawFullExit forbids one.
func NewAMMWithdraw(account, currency, issuer string, mode WithdrawMode, lpTokens string) (*AMMWithdraw, error) {
	w := &AMMWithdraw{
		BaseTx: *NewBaseTx(TypeAMMWithdraw, account),
		Asset:  AssetRef{Currency: "XRP"},
		Asset2: AssetRef{Currency: currency, Issuer: issuer},
	}
	switch mode {
	case WithdrawProportional:
		if lpTokens == "" {
			return nil, errors.New("temMALFORMED: proportional withdraw requires an LP-token amount")
		}
		lp := NewIssuedAmount(lpTokens, "LPT", account)
		w.LPTokenIn = &lp
		w.SetFlags(TfLPToken)
	case WithdrawFullExit:
		if lpTokens != "" {
			return nil, errors.New("temMALFORMED: full exit takes no amount")
		}
		w.SetFlags(TfWithdrawAll)
	default:
		return nil, fmt.Errorf("temINVALID_FLAG: unknown withdraw mode %d", mode)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// TxType returns the transaction type
func (w *AMMWithdraw) TxType() Type {
	return TypeAMMWithdraw
}

// Mode reports the withdraw mode encoded in the flags
func (w *AMMWithdraw) Mode() (WithdrawMode, error) {
	switch w.GetFlags() & (TfLPToken | TfWithdrawAll) {
	case TfLPToken:
		return WithdrawProportional, nil
	case TfWithdrawAll:
		return WithdrawFullExit, nil
	}
	return 0, ErrInvalidFlags
}

// Validate validates the AMMWithdraw transaction
func (w *AMMWithdraw) Validate() error {
	if err := w.BaseTx.Validate(); err != nil {
		return err
	}
	if !ValidCurrencyCode(w.Asset2.Currency) {
		return ErrBadCurrency
	}
	mode, err := w.Mode()
	if err != nil {
		return err
	}
	switch mode {
	case WithdrawProportional:
		if w.LPTokenIn == nil {
			return errors.New("temMALFORMED: proportional withdraw requires LPTokenIn")
		}
		if !w.LPTokenIn.IsPositive() {
			return ErrBadAmount
		}
	case WithdrawFullExit:
		if w.LPTokenIn != nil {
			return errors.New("temMALFORMED: full exit takes no LPTokenIn")
		}
	}
	return nil
}

// Summary returns a human-readable description
func (w *AMMWithdraw) Summary() string {
	return fmt.Sprintf("Withdraw Pool %s/%s", w.Asset.Currency, w.Asset2.Currency)
}
