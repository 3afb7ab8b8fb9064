package state

import (
	"log/slog"
	"sync"

	"bitnames.dev/core/chain"
	"bitnames.dev/core/crypto"
)

// Driver is the thin orchestration layer of spec.md §4.5: it owns the
// StateDB and a single writer lock, and exposes the four operations
// callers actually need. Validation methods and
// ConnectBody/ConnectDeposits all take the same exclusive mutex for
// their full duration, so validation never runs alongside a write,
// matching spec.md §5's single-writer model.
type Driver struct {
	mu       sync.Mutex
	state    *StateDB
	provider crypto.Provider
	log      *slog.Logger
}

// NewDriver wraps state under provider. A nil logger falls back to
// slog.Default(), matching the teacher's own convention for optional
// loggers (crypto/hsm_monitor.go's "logger: slog.Default()").
func NewDriver(provider crypto.Provider, state *StateDB, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{state: state, provider: provider, log: log}
}

// ValidateTransaction is the mempool-style predicate: it validates tx
// against the current state as if it were the sole transaction of the
// next block (height = best_block_height + 1) and returns its fee.
func (d *Driver) ValidateTransaction(tx chain.Transaction) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spent := make([]chain.Output, len(tx.Inputs))
	for i, in := range tx.Inputs {
		u, ok := d.state.UtxoAt(in)
		if !ok {
			return 0, &chain.Error{Code: chain.ErrUnknownOutpoint, Msg: "input does not resolve to a known utxo",
				Fields: map[string]any{"input": i}}
		}
		spent[i] = u
	}
	if err := chain.VerifyAuthorizations(d.provider, spent, tx); err != nil {
		return 0, err
	}
	height := d.state.BestBlockHeight + 1
	if err := ValidateTxPure(d.provider, d.state, spent, height, tx); err != nil {
		return 0, err
	}
	return chain.ValidateTransaction(spent, tx)
}

// ValidateBody validates body as the candidate for the next block
// without mutating state, returning its total fee.
func (d *Driver) ValidateBody(body chain.Body) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validateBodyLocked(body)
}

func (d *Driver) validateBodyLocked(body chain.Body) (uint64, error) {
	spentUtxosPerTx, err := resolveSpentUtxosPerTx(d.state, body)
	if err != nil {
		return 0, err
	}
	height := d.state.BestBlockHeight + 1
	if err := validateBodyForConnect(d.provider, d.state, spentUtxosPerTx, height, body); err != nil {
		return 0, err
	}
	return chain.ValidateBody(spentUtxosPerTx, body)
}

// ConnectBody validates body and, only if every check passes, applies
// its effects atomically (spec.md §4.4.3, §4.4.5): either every
// mutation from steps 5-7 is adopted, or the state is left completely
// unchanged.
func (d *Driver) ConnectBody(body chain.Body) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spentUtxosPerTx, err := resolveSpentUtxosPerTx(d.state, body)
	if err != nil {
		d.log.Warn("connect_body rejected", "code", codeOrUnknown(err), "error", err)
		return err
	}
	height := d.state.BestBlockHeight + 1
	if err := validateBodyForConnect(d.provider, d.state, spentUtxosPerTx, height, body); err != nil {
		d.log.Warn("connect_body rejected", "code", codeOrUnknown(err), "error", err)
		return err
	}

	staging := d.state.clone()
	applyBody(d.provider, staging, body)
	d.state.adopt(staging)

	d.log.Info("connect_body applied", "height", d.state.BestBlockHeight, "transactions", len(body.Transactions))
	return nil
}

// ConnectDeposits injects externally-originated UTXOs (peg-ins or
// genesis deposits) directly into the UTXO set. It is the only
// operation that adds UTXOs without a transaction (spec.md §4.5) and
// does not advance BestBlockHeight.
func (d *Driver) ConnectDeposits(deposits map[chain.OutPoint]chain.Output) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for op := range deposits {
		if op.Kind != chain.OutPointDeposit {
			return &chain.Error{Code: chain.ErrUnknownOutpoint, Msg: "connect_deposits requires Deposit outpoints"}
		}
	}
	for op, out := range deposits {
		d.state.Utxos[op] = out
	}
	d.log.Info("connect_deposits applied", "count", len(deposits))
	return nil
}

// Snapshot returns the Driver's current read-only view, for callers
// (storage package, resolver package) that need to inspect state
// between connects without racing a concurrent ConnectBody.
func (d *Driver) Snapshot() (*StateDB, func()) {
	d.mu.Lock()
	return d.state, d.mu.Unlock
}

func codeOrUnknown(err error) chain.ErrorCode {
	if code, ok := chain.CodeOf(err); ok {
		return code
	}
	return "UNKNOWN"
}
