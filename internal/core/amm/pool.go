// Package amm implements constant-product curve math and liquidity-share
// bookkeeping over exact rational arithmetic. Amounts cross the package
// boundary as decimal strings; no floating point is involved where shares
// decide balances.
package amm

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrBadDecimal     = errors.New("amm: not a valid decimal string")
	ErrNotPositive    = errors.New("amm: amount must be positive")
	ErrDrainsPool     = errors.New("amm: withdrawal would empty a reserve")
	ErrInsufficientLP = errors.New("amm: LP amount exceeds supply")
	ErrNoPosition     = errors.New("amm: holder has no position")
)

// Side selects one reserve of the pair
type Side int

const (
	// SideBase is the native-currency reserve
	SideBase Side = iota
	// SideQuote is the issued-currency reserve
	SideQuote
)

// Pool is the accounting state of one constant-product pool: both reserves,
// the outstanding liquidity-pool-token supply, per-holder positions and the
// trading fee.
type Pool struct {
	base     *big.Rat
	quote    *big.Rat
	lpSupply *big.Rat
	feeBps   uint16

	// positions maps holder address to LP tokens held
	positions map[string]*big.Rat
}

// NewPool creates a pool from its initial reserves. The creator's initial
// LP-token credit equals the base reserve magnitude.
func NewPool(creator, baseReserve, quoteReserve string, feeBps uint16) (*Pool, error) {
	base, err := parsePositive(baseReserve)
	if err != nil {
		return nil, fmt.Errorf("base reserve: %w", err)
	}
	quote, err := parsePositive(quoteReserve)
	if err != nil {
		return nil, fmt.Errorf("quote reserve: %w", err)
	}
	supply := new(big.Rat).Set(base)
	p := &Pool{
		base:      base,
		quote:     quote,
		lpSupply:  supply,
		feeBps:    feeBps,
		positions: map[string]*big.Rat{creator: new(big.Rat).Set(supply)},
	}
	return p, nil
}

// BaseReserve returns the native reserve as a decimal string
func (p *Pool) BaseReserve() string { return ratString(p.base) }

// QuoteReserve returns the issued reserve as a decimal string
func (p *Pool) QuoteReserve() string { return ratString(p.quote) }

// LPSupply returns the outstanding LP-token supply as a decimal string
func (p *Pool) LPSupply() string { return ratString(p.lpSupply) }

// FeeBps returns the trading fee in basis points
func (p *Pool) FeeBps() uint16 { return p.feeBps }

// Position returns a holder's LP-token balance as a decimal string
func (p *Pool) Position(holder string) string {
	pos, ok := p.positions[holder]
	if !ok {
		return "0"
	}
	return ratString(pos)
}

// K returns the constant-product invariant reserve_base x reserve_quote.
// Non-decreasing except under withdrawal.
func (p *Pool) K() *big.Rat {
	return new(big.Rat).Mul(p.base, p.quote)
}

// SpotPrice returns quote/base as a decimal string
func (p *Pool) SpotPrice() string {
	return ratString(new(big.Rat).Quo(p.quote, p.base))
}

// DepositBalanced adds liquidity on both sides, pairing the contributions at
// the current reserve ratio. The submitted amounts are maximums: whichever
// side exceeds the ratio is scaled down, so the deposit never moves the spot
// price. Minted: supply x effectiveBaseIn / baseReserve.
func (p *Pool) DepositBalanced(holder, baseMax, quoteMax string) (string, error) {
	b, err := parsePositive(baseMax)
	if err != nil {
		return "", err
	}
	q, err := parsePositive(quoteMax)
	if err != nil {
		return "", err
	}

	// base amount the offered quote side can pair with
	pairable := new(big.Rat).Mul(q, new(big.Rat).Quo(p.base, p.quote))
	bIn := b
	if pairable.Cmp(b) < 0 {
		bIn = pairable
	}
	qIn := new(big.Rat).Mul(bIn, new(big.Rat).Quo(p.quote, p.base))

	minted := new(big.Rat).Mul(p.lpSupply, new(big.Rat).Quo(bIn, p.base))
	p.base.Add(p.base, bIn)
	p.quote.Add(p.quote, qIn)
	p.lpSupply.Add(p.lpSupply, minted)
	p.credit(holder, minted)
	return ratString(minted), nil
}

// DepositSingle adds one reserve and mints LP tokens by the proportional
// share rule on that reserve. Fee-less approximation of the single-asset
// curve.
func (p *Pool) DepositSingle(holder string, side Side, amountIn string) (string, error) {
	in, err := parsePositive(amountIn)
	if err != nil {
		return "", err
	}
	reserve := p.base
	if side == SideQuote {
		reserve = p.quote
	}

	// minted = supply * in / (2 * reserve): half weight, single side
	share := new(big.Rat).Quo(in, new(big.Rat).Mul(two, reserve))
	minted := new(big.Rat).Mul(p.lpSupply, share)

	reserve.Add(reserve, in)
	p.lpSupply.Add(p.lpSupply, minted)
	p.credit(holder, minted)
	return ratString(minted), nil
}

// WithdrawProportional burns lpIn tokens and returns both reserves in the
// redeemed fraction. Exact: depositing then withdrawing the minted amount
// restores the pre-deposit reserves. Neither reserve may reach zero while
// the pool exists.
func (p *Pool) WithdrawProportional(holder, lpIn string) (baseOut, quoteOut string, err error) {
	lp, err := parsePositive(lpIn)
	if err != nil {
		return "", "", err
	}
	pos, ok := p.positions[holder]
	if !ok {
		return "", "", ErrNoPosition
	}
	if lp.Cmp(pos) > 0 {
		return "", "", ErrInsufficientLP
	}
	if lp.Cmp(p.lpSupply) >= 0 {
		return "", "", ErrDrainsPool
	}

	fraction := new(big.Rat).Quo(lp, p.lpSupply)
	bOut := new(big.Rat).Mul(p.base, fraction)
	qOut := new(big.Rat).Mul(p.quote, fraction)

	p.base.Sub(p.base, bOut)
	p.quote.Sub(p.quote, qOut)
	p.lpSupply.Sub(p.lpSupply, lp)
	pos.Sub(pos, lp)
	if pos.Sign() == 0 {
		delete(p.positions, holder)
	}
	return ratString(bOut), ratString(qOut), nil
}

// WithdrawAll removes the holder's entire position. Fails rather than let a
// reserve reach zero: the last liquidity provider cannot fully exit while
// the pool exists.
func (p *Pool) WithdrawAll(holder string) (baseOut, quoteOut string, err error) {
	pos, ok := p.positions[holder]
	if !ok {
		return "", "", ErrNoPosition
	}
	return p.WithdrawProportional(holder, ratString(pos))
}

// AccrueFee grows both reserves by the trading fee on a notional base
// volume, increasing k without minting LP tokens.
func (p *Pool) AccrueFee(baseVolume string) error {
	v, err := parsePositive(baseVolume)
	if err != nil {
		return err
	}
	fee := new(big.Rat).Mul(v, big.NewRat(int64(p.feeBps), 10000))
	quoteFee := new(big.Rat).Mul(fee, new(big.Rat).Quo(p.quote, p.base))
	p.base.Add(p.base, fee)
	p.quote.Add(p.quote, quoteFee)
	return nil
}

func (p *Pool) credit(holder string, minted *big.Rat) {
	pos, ok := p.positions[holder]
	if !ok {
		pos = new(big.Rat)
		p.positions[holder] = pos
	}
	pos.Add(pos, minted)
}

var two = big.NewRat(2, 1)

func parsePositive(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadDecimal, s)
	}
	if r.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotPositive, s)
	}
	return r, nil
}

// ratString renders a rational as a decimal string: exact when the value
// terminates, otherwise rounded to 15 fractional digits with trailing zeros
// trimmed.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(15)
	// trim trailing zeros but keep at least one fractional digit
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
