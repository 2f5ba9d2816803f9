// Package submit implements the submission pipeline: it consumes compiled
// transaction templates, simulates consensus latency, assigns identifiers,
// appends audit entries and applies state side effects. The pipeline is the
// only writer of the ledger store.
package submit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/tx"
)

// HashSource produces opaque fixed-length transaction identifiers.
// Injectable so tests run deterministically.
type HashSource interface {
	TxHash() string
}

// randHashSource is the production source: 32 random bytes, hex upper.
type randHashSource struct{}

func (randHashSource) TxHash() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// uuid-derived hash rather than panic
		return strings.ToUpper(strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""))[:64]
	}
	return strings.ToUpper(hex.EncodeToString(b[:]))
}

// SequentialHashes is a deterministic HashSource for tests
type SequentialHashes struct {
	n int
}

// TxHash returns "0000...0001", "0000...0002", ...
func (s *SequentialHashes) TxHash() string {
	s.n++
	h := big.NewInt(int64(s.n)).Text(16)
	return strings.ToUpper(strings.Repeat("0", 64-len(h)) + h)
}

// NotifySink receives (severity, title, message) triples on state-changing
// completions. Purely informational; the core imposes no obligation on it.
type NotifySink interface {
	Notify(severity, title, message string)
}

// NopSink discards notifications
type NopSink struct{}

func (NopSink) Notify(severity, title, message string) {}

// Receipt is the outcome of one submission
type Receipt struct {
	// EntryID is the audit log entry identifier
	EntryID string `json:"entryId"`

	// Hash is the opaque transaction identifier
	Hash string `json:"hash"`

	// Result is the engine result code
	Result Result `json:"result"`

	// Summary is the human-readable description recorded in the audit log
	Summary string `json:"summary"`
}

// Pipeline simulates submission of compiled templates against the store.
type Pipeline struct {
	store  *ledger.Store
	hashes HashSource
	notify NotifySink
	now    func() time.Time

	latencyMin time.Duration
	latencyMax time.Duration
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithHashSource injects the transaction identifier source
func WithHashSource(h HashSource) Option {
	return func(p *Pipeline) { p.hashes = h }
}

// WithLatency bounds the simulated consensus delay. Zero disables it.
func WithLatency(min, max time.Duration) Option {
	return func(p *Pipeline) { p.latencyMin, p.latencyMax = min, max }
}

// WithClock injects a deterministic time source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithNotifier wires the notification sink
func WithNotifier(n NotifySink) Option {
	return func(p *Pipeline) { p.notify = n }
}

// NewPipeline creates a submission pipeline over the given store
func NewPipeline(store *ledger.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		hashes:     randHashSource{},
		notify:     NopSink{},
		now:        time.Now,
		latencyMin: 400 * time.Millisecond,
		latencyMax: 800 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs one compiled template through the simulated consensus path:
// validate, wait, assign a hash, apply side effects, append the audit entry.
// Cancelling ctx during the latency window aborts before any store
// mutation.
func (p *Pipeline) Submit(ctx context.Context, tpl tx.Template) (Receipt, error) {
	if err := tpl.Validate(); err != nil {
		return Receipt{}, err
	}

	if err := p.wait(ctx); err != nil {
		return Receipt{}, err
	}

	hash := p.hashes.TxHash()
	summary := tpl.Summary()
	result := p.apply(tpl)

	status := ledger.StatusValidated
	if !result.OK() {
		status = ledger.StatusFailed
		summary = summary + " (" + result.String() + ")"
	}

	entry := p.store.AppendAudit(ledger.AuditEntry{
		Hash:      hash,
		Type:      tpl.TxType().String(),
		Status:    status,
		Timestamp: p.now(),
		Details:   summary,
	})

	if result.OK() {
		p.notify.Notify("success", "Transaction Validated", summary)
	} else {
		p.notify.Notify("error", "Transaction Rejected", summary)
	}

	return Receipt{
		EntryID: entry.ID,
		Hash:    hash,
		Result:  result,
		Summary: summary,
	}, nil
}

// VerifyStatus classifies a hash lookup against the audit log
type VerifyStatus int

const (
	// VerifyNotFound means no entry carries the hash
	VerifyNotFound VerifyStatus = iota
	// VerifyValidated means the entry exists and succeeded
	VerifyValidated
	// VerifyFailed means the entry exists but the submission failed
	VerifyFailed
)

// Verify looks a submission up by hash. "Not found" is reported distinctly
// from "found but failed".
func (p *Pipeline) Verify(hash string) (ledger.AuditEntry, VerifyStatus) {
	entry, ok := p.store.EntryByHash(hash)
	if !ok {
		return ledger.AuditEntry{}, VerifyNotFound
	}
	if entry.Status == ledger.StatusFailed {
		return entry, VerifyFailed
	}
	return entry, VerifyValidated
}

// wait sleeps the simulated consensus latency, honoring cancellation.
// This is the pipeline's only suspension point.
func (p *Pipeline) wait(ctx context.Context) error {
	delay := p.latencyMin
	if p.latencyMax > p.latencyMin {
		jitter, err := rand.Int(rand.Reader, big.NewInt(int64(p.latencyMax-p.latencyMin)))
		if err == nil {
			delay += time.Duration(jitter.Int64())
		}
	}
	if delay <= 0 {
		// still honor an already-cancelled context
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
