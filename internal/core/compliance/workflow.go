// Package compliance drives issuer enforcement actions against trustline
// holders as an explicit state machine: an operator selects a holder and an
// action, confirms, and the workflow compiles the corresponding template and
// submits it through the pipeline.
package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/submit"
	"github.com/nexus-ledger/nexusd/internal/core/tx"
)

var (
	ErrBusy            = errors.New("compliance: action already in progress")
	ErrNothingSelected = errors.New("compliance: no action selected")
	ErrNotPermitted    = errors.New("compliance: action not permitted on this asset")
)

// Action is an issuer enforcement action against one holder
type Action string

const (
	ActionFreeze   Action = "freeze"
	ActionClawback Action = "clawback"
)

// State is the workflow phase
type State int

const (
	StateIdle State = iota
	StateSelected
	StateExecuting
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateExecuting:
		return "executing"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Workflow is a single-actor enforcement session. It is not safe for
// concurrent use; the rpc layer serializes access.
type Workflow struct {
	store    *ledger.Store
	pipeline *submit.Pipeline

	state   State
	assetID string
	holder  string
	action  Action
}

// NewWorkflow creates an idle workflow over the given store and pipeline
func NewWorkflow(store *ledger.Store, pipeline *submit.Pipeline) *Workflow {
	return &Workflow{store: store, pipeline: pipeline}
}

// State returns the current phase
func (w *Workflow) State() State { return w.state }

// Selection returns the pending (assetID, holder, action) triple, valid only
// in the selected state.
func (w *Workflow) Selection() (assetID, holder string, action Action) {
	return w.assetID, w.holder, w.action
}

// Select stages an enforcement action against a holder. Clawback is only
// offered on assets whose issuer gates holders with the authorization
// requirement.
func (w *Workflow) Select(assetID, holder string, action Action) error {
	if w.state == StateSelected || w.state == StateExecuting {
		return ErrBusy
	}

	asset, err := w.store.Asset(assetID)
	if err != nil {
		return err
	}
	if _, err := w.store.Holder(assetID, holder); err != nil {
		return err
	}
	if action == ActionClawback && !asset.Flags.RequireAuth {
		return fmt.Errorf("%w: clawback requires the authorization flag", ErrNotPermitted)
	}
	if action != ActionFreeze && action != ActionClawback {
		return fmt.Errorf("compliance: unknown action %q", action)
	}

	w.state = StateSelected
	w.assetID = assetID
	w.holder = holder
	w.action = action
	return nil
}

// Confirm compiles the staged action into its transaction template and runs
// it through the pipeline. The commit is reflected in the store by the
// pipeline's side effects; the workflow itself only orchestrates.
func (w *Workflow) Confirm(ctx context.Context) (submit.Receipt, error) {
	if w.state != StateSelected {
		return submit.Receipt{}, ErrNothingSelected
	}

	asset, err := w.store.Asset(w.assetID)
	if err != nil {
		w.state = StateIdle
		return submit.Receipt{}, err
	}
	holder, err := w.store.Holder(w.assetID, w.holder)
	if err != nil {
		w.state = StateIdle
		return submit.Receipt{}, err
	}

	var tpl tx.Template
	switch w.action {
	case ActionFreeze:
		ts, err := tx.NewTrustSet(asset.Issuer, tx.TrustModeFreeze, asset.Currency, w.holder, holder.Limit)
		if err != nil {
			w.state = StateIdle
			return submit.Receipt{}, err
		}
		tpl = ts
	case ActionClawback:
		cb, err := tx.NewClawback(asset.Issuer, w.holder, asset.Currency, holder.Balance)
		if err != nil {
			w.state = StateIdle
			return submit.Receipt{}, err
		}
		tpl = cb
	}

	w.state = StateExecuting
	receipt, err := w.pipeline.Submit(ctx, tpl)
	if err != nil {
		// cancelled or rejected before any mutation; the selection is kept
		// so the operator can retry or cancel
		w.state = StateSelected
		return submit.Receipt{}, err
	}

	w.state = StateCommitted
	return receipt, nil
}

// Cancel abandons the staged action without side effects
func (w *Workflow) Cancel() error {
	switch w.state {
	case StateSelected:
		w.state = StateCancelled
		w.clear()
		return nil
	case StateExecuting:
		return ErrBusy
	default:
		return ErrNothingSelected
	}
}

// Reset returns a committed or cancelled workflow to idle
func (w *Workflow) Reset() {
	if w.state == StateExecuting {
		return
	}
	w.state = StateIdle
	w.clear()
}

func (w *Workflow) clear() {
	w.assetID = ""
	w.holder = ""
	w.action = ""
}
