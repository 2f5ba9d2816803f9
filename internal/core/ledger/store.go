// Package ledger holds the authoritative in-memory state of the simulated
// network: issued assets, per-asset trustline holders, AMM pools and the
// append-only audit log. The store is constructed explicitly and passed by
// reference; the submission pipeline is its only writer.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-ledger/nexusd/internal/core/amm"
)

var (
	ErrAssetExists    = errors.New("ledger: asset already exists")
	ErrAssetNotFound  = errors.New("ledger: asset not found")
	ErrHolderNotFound = errors.New("ledger: holder not found")
	ErrHolderExists   = errors.New("ledger: holder already exists")
	ErrPoolExists     = errors.New("ledger: pool already exists")
	ErrPoolNotFound   = errors.New("ledger: pool not found")
)

// AssetFlags are the issuer-level controls on an asset
type AssetFlags struct {
	RequireAuth   bool `json:"requireAuth"`
	DefaultRipple bool `json:"defaultRipple"`
	Freeze        bool `json:"freeze"`
}

// Asset is an issued currency. Created by issuance, mutated only by
// configuration, never deleted.
type Asset struct {
	ID       string     `json:"id"`
	Currency string     `json:"currency"`
	Supply   string     `json:"supply"`
	Issuer   string     `json:"issuer"`
	Flags    AssetFlags `json:"flags"`
}

// HolderStatus is the compliance state of a trustline holder
type HolderStatus string

const (
	HolderActive HolderStatus = "active"
	HolderFrozen HolderStatus = "frozen"
)

// Holder is one trustline record, scoped to a single (asset, address) pair.
type Holder struct {
	Address string       `json:"address"`
	Balance string       `json:"balance"`
	Limit   string       `json:"limit"`
	Status  HolderStatus `json:"status"`

	// Tier is the compliance tier ordinal; authorization bumps it
	Tier int `json:"tier"`
}

// EntryStatus is the audit status of a submitted transaction
type EntryStatus string

const (
	StatusValidated EntryStatus = "validated"
	StatusPending   EntryStatus = "pending"
	StatusFailed    EntryStatus = "failed"
)

// AuditEntry is one append-only audit log record
type AuditEntry struct {
	ID        string      `json:"id"`
	Hash      string      `json:"hash"`
	Type      string      `json:"type"`
	Status    EntryStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Details   string      `json:"details"`
}

// PoolInfo is a read-only snapshot of one pool
type PoolInfo struct {
	Pair         string `json:"pair"`
	BaseReserve  string `json:"baseReserve"`
	QuoteReserve string `json:"quoteReserve"`
	LPSupply     string `json:"lpSupply"`
	FeeBps       uint16 `json:"feeBps"`
	Volume24h    string `json:"volume24h"`
}

type poolState struct {
	pair    string
	math    *amm.Pool
	volume  string
	created time.Time
}

// Store owns every ledger collection. All reads return copies; no internal
// slice or map escapes, so readers always observe a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	assets      []Asset
	assetIndex  map[string]int    // id -> position in assets
	assetByPair map[string]string // currency/issuer -> id

	holders map[string]map[string]*Holder // asset id -> address -> holder

	pools map[string]*poolState // pair key -> pool

	audit      []AuditEntry
	auditByID  map[string]int
	auditByTxn map[string]int // hash -> position

	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock injects a deterministic time source for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		assetIndex:  make(map[string]int),
		assetByPair: make(map[string]string),
		holders:     make(map[string]map[string]*Holder),
		pools:       make(map[string]*poolState),
		auditByID:   make(map[string]int),
		auditByTxn:  make(map[string]int),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PairKey builds the canonical pool/asset pair key, e.g. "XRP/USD"
func PairKey(base, quote string) string {
	return base + "/" + quote
}

// CreateAsset registers a new asset and returns its stable identifier.
// Identifiers are unique for the asset's lifetime and never reused.
func (s *Store) CreateAsset(currency, supply, issuer string, flags AssetFlags) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := currency + "/" + issuer
	if _, exists := s.assetByPair[key]; exists {
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetExists, key)
	}

	a := Asset{
		ID:       uuid.NewString(),
		Currency: currency,
		Supply:   supply,
		Issuer:   issuer,
		Flags:    flags,
	}
	s.assetIndex[a.ID] = len(s.assets)
	s.assetByPair[key] = a.ID
	s.assets = append(s.assets, a)
	s.holders[a.ID] = make(map[string]*Holder)
	return a, nil
}

// SetAssetFlags replaces an asset's flag set
func (s *Store) SetAssetFlags(assetID string, flags AssetFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.assetIndex[assetID]
	if !ok {
		return ErrAssetNotFound
	}
	s.assets[i].Flags = flags
	return nil
}

// Asset returns a copy of one asset
func (s *Store) Asset(assetID string) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.assetIndex[assetID]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return s.assets[i], nil
}

// AssetByCurrency finds an asset by its currency/issuer pair
func (s *Store) AssetByCurrency(currency, issuer string) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.assetByPair[currency+"/"+issuer]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return s.assets[s.assetIndex[id]], nil
}

// Assets returns a copy of the asset collection in creation order
func (s *Store) Assets() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// AddHolder creates a trustline record. At most one record may exist per
// (asset, address) pair.
func (s *Store) AddHolder(assetID string, h Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hs, ok := s.holders[assetID]
	if !ok {
		return ErrAssetNotFound
	}
	if _, exists := hs[h.Address]; exists {
		return fmt.Errorf("%w: %s", ErrHolderExists, h.Address)
	}
	if h.Status == "" {
		h.Status = HolderActive
	}
	copied := h
	hs[h.Address] = &copied
	return nil
}

// Holder returns a copy of one trustline record
func (s *Store) Holder(assetID, address string) (Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, err := s.holderLocked(assetID, address)
	if err != nil {
		return Holder{}, err
	}
	return *h, nil
}

// Holders returns copies of all trustline records for an asset
func (s *Store) Holders(assetID string) ([]Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hs, ok := s.holders[assetID]
	if !ok {
		return nil, ErrAssetNotFound
	}
	out := make([]Holder, 0, len(hs))
	for _, h := range hs {
		out = append(out, *h)
	}
	return out, nil
}

// SetHolderStatus updates a holder's compliance status
func (s *Store) SetHolderStatus(assetID, address string, status HolderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.holderLocked(assetID, address)
	if err != nil {
		return err
	}
	h.Status = status
	return nil
}

// AuthorizeHolder marks a holder authorized: active status and a bumped
// compliance tier.
func (s *Store) AuthorizeHolder(assetID, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.holderLocked(assetID, address)
	if err != nil {
		return err
	}
	h.Status = HolderActive
	h.Tier++
	return nil
}

// ZeroHolderBalance sets a holder's balance to "0.00" (clawback effect)
func (s *Store) ZeroHolderBalance(assetID, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.holderLocked(assetID, address)
	if err != nil {
		return err
	}
	h.Balance = "0.00"
	return nil
}

func (s *Store) holderLocked(assetID, address string) (*Holder, error) {
	hs, ok := s.holders[assetID]
	if !ok {
		return nil, ErrAssetNotFound
	}
	h, ok := hs[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHolderNotFound, address)
	}
	return h, nil
}

// CreatePool registers a new AMM pool under its pair key
func (s *Store) CreatePool(pair, creator, baseReserve, quoteReserve string, feeBps uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[pair]; exists {
		return fmt.Errorf("%w: %s", ErrPoolExists, pair)
	}
	math, err := amm.NewPool(creator, baseReserve, quoteReserve, feeBps)
	if err != nil {
		return err
	}
	s.pools[pair] = &poolState{pair: pair, math: math, volume: "0", created: s.now()}
	return nil
}

// Pool returns a snapshot of one pool
func (s *Store) Pool(pair string) (PoolInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[pair]
	if !ok {
		return PoolInfo{}, fmt.Errorf("%w: %s", ErrPoolNotFound, pair)
	}
	return snapshotPool(p), nil
}

// Pools returns snapshots of every pool
func (s *Store) Pools() []PoolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PoolInfo, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, snapshotPool(p))
	}
	return out
}

func snapshotPool(p *poolState) PoolInfo {
	return PoolInfo{
		Pair:         p.pair,
		BaseReserve:  p.math.BaseReserve(),
		QuoteReserve: p.math.QuoteReserve(),
		LPSupply:     p.math.LPSupply(),
		FeeBps:       p.math.FeeBps(),
		Volume24h:    p.volume,
	}
}

// MutatePool runs fn against a pool's accounting state under the write
// lock. The pipeline uses this for deposit and withdraw side effects.
func (s *Store) MutatePool(pair string, fn func(*amm.Pool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[pair]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, pair)
	}
	return fn(p.math)
}

// AppendAudit appends an entry to the audit log. Strictly append-ordered;
// the timestamp is stamped here if unset.
func (s *Store) AppendAudit(e AuditEntry) AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	s.auditByID[e.ID] = len(s.audit)
	s.auditByTxn[e.Hash] = len(s.audit)
	s.audit = append(s.audit, e)
	return e
}

// AuditLog returns the audit entries newest-first
func (s *Store) AuditLog() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AuditEntry, len(s.audit))
	for i, e := range s.audit {
		out[len(s.audit)-1-i] = e
	}
	return out
}

// EntryByID looks up an audit entry by identifier
func (s *Store) EntryByID(id string) (AuditEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.auditByID[id]
	if !ok {
		return AuditEntry{}, false
	}
	return s.audit[i], true
}

// EntryByHash looks up an audit entry by transaction hash. "Not found" is
// distinct from "found but failed": callers inspect Status on a hit.
func (s *Store) EntryByHash(hash string) (AuditEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.auditByTxn[hash]
	if !ok {
		return AuditEntry{}, false
	}
	return s.audit[i], true
}

// AuditLen returns the number of audit entries
func (s *Store) AuditLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audit)
}
