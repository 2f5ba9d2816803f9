package rpc

import (
	"context"
	"math/rand"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nexus-ledger/nexusd/internal/core/ledger"
)

// Ledger index base and the displayed total supply, matching the public
// network's ballpark figures.
const (
	ledgerIndexBase = 85_000_000
	totalCoins      = "99,989,500,000"
)

// LedgerSummary is one ledger feed sample
type LedgerSummary struct {
	LedgerIndex uint64    `json:"ledgerIndex"`
	CloseTime   time.Time `json:"closeTime"`
	TxCount     int       `json:"txCount"`
	TotalCoins  string    `json:"totalCoins"`
	Endpoint    string    `json:"endpoint"`
}

// Poller produces ledger summaries on a fixed interval: a monotonically
// advancing index with jittered per-ledger transaction counts, the way a
// validator feed would look. Recent summaries stay in an LRU cache for the
// ledger endpoint.
type Poller struct {
	store    *ledger.Store
	endpoint string
	interval time.Duration

	mu     sync.RWMutex
	index  uint64
	latest LedgerSummary
	cache  *lru.Cache[uint64, LedgerSummary]

	rng  *rand.Rand
	now  func() time.Time
	sink func(LedgerSummary)
}

// PollerOption configures a Poller
type PollerOption func(*Poller)

// WithPollerClock injects a deterministic time source
func WithPollerClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// WithPollerSeed fixes the jitter source for reproducible feeds
func WithPollerSeed(seed int64) PollerOption {
	return func(p *Poller) { p.rng = rand.New(rand.NewSource(seed)) }
}

// WithSummarySink wires a callback invoked on every tick (the ws hub)
func WithSummarySink(sink func(LedgerSummary)) PollerOption {
	return func(p *Poller) { p.sink = sink }
}

// NewPoller creates a poller over the store. cacheSize bounds the retained
// summary history.
func NewPoller(store *ledger.Store, endpoint string, interval time.Duration, cacheSize int, opts ...PollerOption) (*Poller, error) {
	cache, err := lru.New[uint64, LedgerSummary](cacheSize)
	if err != nil {
		return nil, err
	}
	p := &Poller{
		store:    store,
		endpoint: endpoint,
		interval: interval,
		cache:    cache,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.index = ledgerIndexBase + uint64(p.rng.Intn(100))
	p.tick() // seed an initial summary so Latest never comes up empty
	return p, nil
}

// Run advances the feed until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

// Latest returns the most recent summary
func (p *Poller) Latest() LedgerSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Summary returns a cached summary by ledger index
func (p *Poller) Summary(index uint64) (LedgerSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cache.Get(index)
}

func (p *Poller) tick() {
	p.mu.Lock()
	p.index++
	s := LedgerSummary{
		LedgerIndex: p.index,
		CloseTime:   p.now(),
		TxCount:     p.rng.Intn(50) + 10 + p.store.AuditLen(),
		TotalCoins:  totalCoins,
		Endpoint:    p.endpoint,
	}
	p.latest = s
	p.cache.Add(s.LedgerIndex, s)
	sink := p.sink
	p.mu.Unlock()

	if sink != nil {
		sink(s)
	}
}
