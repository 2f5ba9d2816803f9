package rpc

import (
	"fmt"

	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/tx"
)

// CompileRequest is the wire form of a template compilation. Kind selects
// the operation; the remaining fields are operation-specific.
type CompileRequest struct {
	Kind    string `json:"kind"`
	Account string `json:"account,omitempty"`

	// issuer_config
	RequireAuth   bool `json:"requireAuth,omitempty"`
	DefaultRipple bool `json:"defaultRipple,omitempty"`

	// currency operations
	Currency    string `json:"currency,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Destination string `json:"destination,omitempty"`

	// trust_set
	Mode  string `json:"mode,omitempty"` // limit | authorize | freeze
	Limit string `json:"limit,omitempty"`

	// offer_create
	Side  string `json:"side,omitempty"` // buy | sell
	Price string `json:"price,omitempty"`

	// amm operations
	Amount2    string `json:"amount2,omitempty"`
	TradingFee uint16 `json:"tradingFee,omitempty"`
	Strategy   string `json:"strategy,omitempty"` // balanced | single
	Withdraw   string `json:"withdraw,omitempty"` // proportional | full
	LPTokens   string `json:"lpTokens,omitempty"`
}

// compileTemplates turns a request into its transaction templates. Most
// kinds compile to exactly one; issuer_config may compile to one per
// enabled toggle.
func compileTemplates(req CompileRequest) ([]tx.Template, error) {
	account := req.Account
	if account == "" {
		account = ledger.ColdWalletAddress
	}

	switch req.Kind {
	case "issuer_config":
		set, err := tx.CompileIssuerConfig(account, req.RequireAuth, req.DefaultRipple)
		if err != nil {
			return nil, err
		}
		out := make([]tx.Template, len(set))
		for i, a := range set {
			out[i] = a
		}
		return out, nil

	case "payment":
		destination := req.Destination
		if destination == "" {
			destination = ledger.HotWalletAddress
		}
		if req.Currency == "" || req.Currency == "XRP" {
			p, err := tx.NewNativePayment(account, destination, req.Amount)
			if err != nil {
				return nil, err
			}
			return []tx.Template{p}, nil
		}
		issuer := req.Issuer
		if issuer == "" {
			issuer = account
		}
		p, err := tx.NewIssuedPayment(account, destination, req.Currency, issuer, req.Amount)
		if err != nil {
			return nil, err
		}
		return []tx.Template{p}, nil

	case "trust_set":
		mode, err := trustMode(req.Mode)
		if err != nil {
			return nil, err
		}
		t, err := tx.NewTrustSet(account, mode, req.Currency, req.Issuer, req.Limit)
		if err != nil {
			return nil, err
		}
		return []tx.Template{t}, nil

	case "clawback":
		c, err := tx.NewClawback(account, req.Destination, req.Currency, req.Amount)
		if err != nil {
			return nil, err
		}
		return []tx.Template{c}, nil

	case "offer_create":
		side := tx.SideBuy
		if req.Side == "sell" {
			side = tx.SideSell
		} else if req.Side != "" && req.Side != "buy" {
			return nil, fmt.Errorf("unknown order side %q", req.Side)
		}
		o, err := tx.NewOfferCreate(account, side, req.Currency, req.Issuer, req.Amount, req.Price)
		if err != nil {
			return nil, err
		}
		return []tx.Template{o}, nil

	case "amm_create":
		a, err := tx.NewAMMCreate(account, req.Currency, req.Issuer, req.Amount, req.Amount2, req.TradingFee)
		if err != nil {
			return nil, err
		}
		return []tx.Template{a}, nil

	case "amm_deposit":
		strategy := tx.DepositBalanced
		if req.Strategy == "single" {
			strategy = tx.DepositSingleAsset
		} else if req.Strategy != "" && req.Strategy != "balanced" {
			return nil, fmt.Errorf("unknown deposit strategy %q", req.Strategy)
		}
		d, err := tx.NewAMMDeposit(account, req.Currency, req.Issuer, strategy, req.Amount, req.Amount2)
		if err != nil {
			return nil, err
		}
		return []tx.Template{d}, nil

	case "amm_withdraw":
		mode := tx.WithdrawProportional
		if req.Withdraw == "full" {
			mode = tx.WithdrawFullExit
		} else if req.Withdraw != "" && req.Withdraw != "proportional" {
			return nil, fmt.Errorf("unknown withdraw mode %q", req.Withdraw)
		}
		w, err := tx.NewAMMWithdraw(account, req.Currency, req.Issuer, mode, req.LPTokens)
		if err != nil {
			return nil, err
		}
		return []tx.Template{w}, nil
	}
	return nil, fmt.Errorf("unknown compile kind %q", req.Kind)
}

func trustMode(s string) (tx.TrustMode, error) {
	switch s {
	case "", "limit":
		return tx.TrustModeLimit, nil
	case "authorize":
		return tx.TrustModeAuthorize, nil
	case "freeze":
		return tx.TrustModeFreeze, nil
	}
	return 0, fmt.Errorf("unknown trust mode %q", s)
}
