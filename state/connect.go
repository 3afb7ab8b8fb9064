package state

import (
	"bitnames.dev/core/chain"
	"bitnames.dev/core/crypto"
)

// resolveSpentUtxosPerTx resolves every input of every transaction in
// body against snap, grouped per transaction in order. A missing
// input fails the whole body with ErrUnknownOutpoint before any other
// check runs (spec.md §4.4.3 step 1).
func resolveSpentUtxosPerTx(snap Snapshot, body chain.Body) ([][]chain.Output, error) {
	out := make([][]chain.Output, len(body.Transactions))
	for i, tx := range body.Transactions {
		spent := make([]chain.Output, len(tx.Inputs))
		for j, in := range tx.Inputs {
			u, ok := snap.UtxoAt(in)
			if !ok {
				return nil, &chain.Error{
					Code:   chain.ErrUnknownOutpoint,
					Msg:    "input does not resolve to a known utxo",
					Fields: map[string]any{"tx": i, "input": j},
				}
			}
			spent[j] = u
		}
		out[i] = spent
	}
	return out, nil
}

// validateBodyForConnect runs spec.md §4.4.3 steps 2-4: authorization,
// the per-transaction BitNames predicate at the connecting height, and
// the base body-wide UTXO rules. It mutates nothing.
func validateBodyForConnect(p crypto.Provider, snap Snapshot, spentUtxosPerTx [][]chain.Output, height uint32, body chain.Body) error {
	if err := chain.VerifyAuthorizationsBody(p, spentUtxosPerTx, body); err != nil {
		return err
	}
	for i, tx := range body.Transactions {
		if err := ValidateTxPure(p, snap, spentUtxosPerTx[i], height, tx); err != nil {
			return err
		}
	}
	if _, err := chain.ValidateBody(spentUtxosPerTx, body); err != nil {
		return err
	}
	return nil
}

// applyBody mutates staging per spec.md §4.4.3 steps 5-7, assuming the
// body has already passed validateBodyForConnect. staging must be a
// clone the caller discards on any later failure.
func applyBody(p crypto.Provider, staging *StateDB, body chain.Body) {
	staging.BestBlockHeight++
	height := staging.BestBlockHeight

	for _, tx := range body.Transactions {
		for _, in := range tx.Inputs {
			delete(staging.Utxos, in)
		}

		txid := chain.TxID(p, tx)
		for vout, o := range tx.Outputs {
			op := chain.RegularOutPoint(txid, uint32(vout))
			staging.Utxos[op] = o

			if o.Content.Kind != chain.ContentCustomKind {
				continue
			}
			switch o.Content.Custom.Kind {
			case chain.BitNamesCommitmentKind:
				c := o.Content.Custom.Commitment
				staging.CommitmentHeight[c] = height
				staging.CommitmentOutpoint[c] = op
			case chain.BitNamesRevealKind:
				rd := o.Content.Custom.Reveal
				c := chain.Commitment(p.Commit([32]byte(rd.Key), rd.Salt))
				staging.KeyCommitment[rd.Key] = c
				staging.CommitmentKey[c] = rd.Key
				staging.KeyValue[rd.Key] = rd.Value
			}
		}
	}

	sweepExpiredCommitments(staging)
}

// sweepExpiredCommitments implements spec.md §4.4.3 step 7: any
// Commitment older than CommitmentMaxAge is pruned from every
// commitment_* table and its UTXO is deleted. key_value bindings are
// never touched here — once revealed, a binding persists even after
// the commitment that won its tie-break expires (spec.md §9 Open
// Question, resolved as PERSIST).
func sweepExpiredCommitments(staging *StateDB) {
	var expired []chain.Commitment
	for c, h := range staging.CommitmentHeight {
		if staging.BestBlockHeight-h > CommitmentMaxAge {
			expired = append(expired, c)
		}
	}
	for _, c := range expired {
		if k, ok := staging.CommitmentKey[c]; ok {
			delete(staging.KeyCommitment, k)
			delete(staging.CommitmentKey, c)
		}
		if op, ok := staging.CommitmentOutpoint[c]; ok {
			delete(staging.Utxos, op)
		}
		delete(staging.CommitmentHeight, c)
		delete(staging.CommitmentOutpoint, c)
	}
}
