package submit

import (
	"errors"

	"github.com/nexus-ledger/nexusd/internal/core/amm"
	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/tx"
)

// apply mutates the store according to the template's semantics and returns
// the engine result. Every write the engine performs funnels through here.
func (p *Pipeline) apply(tpl tx.Template) Result {
	switch t := tpl.(type) {
	case *tx.Payment:
		return p.applyPayment(t)
	case *tx.AccountSet:
		return p.applyAccountSet(t)
	case *tx.TrustSet:
		return p.applyTrustSet(t)
	case *tx.Clawback:
		return p.applyClawback(t)
	case *tx.AMMCreate:
		return p.applyAMMCreate(t)
	case *tx.AMMDeposit:
		return p.applyAMMDeposit(t)
	case *tx.AMMWithdraw:
		return p.applyAMMWithdraw(t)
	case *tx.OfferCreate:
		// Orders rest on the book; no ledger object changes here
		return TesSUCCESS
	}
	return TesSUCCESS
}

// applyPayment handles both issuance (self-issued amount creates an asset)
// and ordinary transfers. Transfers into a frozen trust line are rejected.
func (p *Pipeline) applyPayment(t *tx.Payment) Result {
	if t.Amount.IsNative() {
		return TesSUCCESS
	}

	if t.IsIssuance() {
		asset, err := p.store.CreateAsset(t.Amount.Currency, t.Amount.Value, t.Account, ledger.AssetFlags{
			RequireAuth:   true,
			DefaultRipple: true,
		})
		if err != nil {
			return TecDUPLICATE
		}
		// the destination operational wallet holds the full initial supply
		_ = p.store.AddHolder(asset.ID, ledger.Holder{
			Address: t.Destination,
			Balance: t.Amount.Value,
			Limit:   t.Amount.Value,
			Status:  ledger.HolderActive,
		})
		return TesSUCCESS
	}

	asset, err := p.store.AssetByCurrency(t.Amount.Currency, t.Amount.Issuer)
	if err != nil {
		return TecOBJECT_NOT_FOUND
	}
	if asset.Flags.Freeze {
		return TecFROZEN
	}
	if h, err := p.store.Holder(asset.ID, t.Destination); err == nil && h.Status == ledger.HolderFrozen {
		return TecFROZEN
	}
	return TesSUCCESS
}

// applyAccountSet re-derives the issuer flag set across every asset the
// account issues, so a toggle lands on all of them at once.
func (p *Pipeline) applyAccountSet(t *tx.AccountSet) Result {
	for _, a := range p.store.Assets() {
		if a.Issuer != t.Account {
			continue
		}
		flags := a.Flags
		if t.SetFlag != nil {
			switch *t.SetFlag {
			case tx.AsfRequireAuth:
				flags.RequireAuth = true
			case tx.AsfDefaultRipple:
				flags.DefaultRipple = true
			}
		}
		if t.ClearFlag != nil {
			switch *t.ClearFlag {
			case tx.AsfRequireAuth:
				flags.RequireAuth = false
			case tx.AsfDefaultRipple:
				flags.DefaultRipple = false
			}
		}
		if err := p.store.SetAssetFlags(a.ID, flags); err != nil {
			return TecOBJECT_NOT_FOUND
		}
	}
	return TesSUCCESS
}

// applyTrustSet dispatches on the encoded mode. Issuer-side modes (freeze,
// authorize) target the counterparty named in the limit's issuer field;
// holder-side limit mode records a new trust line for the submitting account.
func (p *Pipeline) applyTrustSet(t *tx.TrustSet) Result {
	mode, err := t.Mode()
	if err != nil {
		return TecNO_PERMISSION
	}

	switch mode {
	case tx.TrustModeFreeze:
		asset, err := p.store.AssetByCurrency(t.LimitAmount.Currency, t.Account)
		if err != nil {
			return TecOBJECT_NOT_FOUND
		}
		if err := p.store.SetHolderStatus(asset.ID, t.LimitAmount.Issuer, ledger.HolderFrozen); err != nil {
			return TecOBJECT_NOT_FOUND
		}
		return TesSUCCESS

	case tx.TrustModeAuthorize:
		asset, err := p.store.AssetByCurrency(t.LimitAmount.Currency, t.Account)
		if err != nil {
			return TecOBJECT_NOT_FOUND
		}
		if !asset.Flags.RequireAuth {
			return TecNO_PERMISSION
		}
		if err := p.store.AuthorizeHolder(asset.ID, t.LimitAmount.Issuer); err != nil {
			return TecOBJECT_NOT_FOUND
		}
		return TesSUCCESS

	default: // TrustModeLimit: holder opens a line toward the issuer
		asset, err := p.store.AssetByCurrency(t.LimitAmount.Currency, t.LimitAmount.Issuer)
		if err != nil {
			return TecOBJECT_NOT_FOUND
		}
		err = p.store.AddHolder(asset.ID, ledger.Holder{
			Address: t.Account,
			Balance: "0.00",
			Limit:   t.LimitAmount.Value,
			Status:  ledger.HolderActive,
		})
		if err != nil && !errors.Is(err, ledger.ErrHolderExists) {
			return TecOBJECT_NOT_FOUND
		}
		return TesSUCCESS
	}
}

func (p *Pipeline) applyClawback(t *tx.Clawback) Result {
	asset, err := p.store.AssetByCurrency(t.Amount.Currency, t.Account)
	if err != nil {
		return TecOBJECT_NOT_FOUND
	}
	if !asset.Flags.RequireAuth {
		// clawback is only lawful on assets the issuer gates
		return TecNO_PERMISSION
	}
	if err := p.store.ZeroHolderBalance(asset.ID, t.Destination); err != nil {
		return TecOBJECT_NOT_FOUND
	}
	return TesSUCCESS
}

func (p *Pipeline) applyAMMCreate(t *tx.AMMCreate) Result {
	drops, err := t.Amount.Drops()
	if err != nil {
		return TecAMM_BALANCE
	}
	pair := ledger.PairKey("XRP", t.Amount2.Currency)
	err = p.store.CreatePool(pair, t.Account, tx.DecimalFromDrops(drops), t.Amount2.Value, t.TradingFee)
	if err != nil {
		return TecDUPLICATE
	}
	return TesSUCCESS
}

func (p *Pipeline) applyAMMDeposit(t *tx.AMMDeposit) Result {
	strategy, err := t.Strategy()
	if err != nil {
		return TecNO_PERMISSION
	}
	pair := ledger.PairKey(t.Asset.Currency, t.Asset2.Currency)

	err = p.store.MutatePool(pair, func(pool *amm.Pool) error {
		switch strategy {
		case tx.DepositBalanced:
			drops, err := t.Amount.Drops()
			if err != nil {
				return err
			}
			_, err = pool.DepositBalanced(t.Account, tx.DecimalFromDrops(drops), t.Amount2.Value)
			return err
		default: // single-asset: exactly one side is present
			if t.Amount != nil {
				drops, err := t.Amount.Drops()
				if err != nil {
					return err
				}
				_, err = pool.DepositSingle(t.Account, amm.SideBase, tx.DecimalFromDrops(drops))
				return err
			}
			_, err := pool.DepositSingle(t.Account, amm.SideQuote, t.Amount2.Value)
			return err
		}
	})
	return poolResult(err)
}

func (p *Pipeline) applyAMMWithdraw(t *tx.AMMWithdraw) Result {
	mode, err := t.Mode()
	if err != nil {
		return TecNO_PERMISSION
	}
	pair := ledger.PairKey(t.Asset.Currency, t.Asset2.Currency)

	err = p.store.MutatePool(pair, func(pool *amm.Pool) error {
		if mode == tx.WithdrawFullExit {
			_, _, err := pool.WithdrawAll(t.Account)
			return err
		}
		_, _, err := pool.WithdrawProportional(t.Account, t.LPTokenIn.Value)
		return err
	})
	return poolResult(err)
}

// poolResult maps pool accounting errors onto engine results
func poolResult(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case errors.Is(err, ledger.ErrPoolNotFound):
		return TecOBJECT_NOT_FOUND
	case errors.Is(err, amm.ErrDrainsPool),
		errors.Is(err, amm.ErrInsufficientLP),
		errors.Is(err, amm.ErrNoPosition):
		return TecAMM_BALANCE
	default:
		return TecAMM_BALANCE
	}
}
