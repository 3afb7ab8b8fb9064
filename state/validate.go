package state

import (
	"bitnames.dev/core/chain"
	"bitnames.dev/core/crypto"
)

// spentCommitments returns the set of Commitments among spentUtxos,
// the SC set of spec.md §4.4.2.
func spentCommitments(spentUtxos []chain.Output) map[chain.Commitment]struct{} {
	sc := make(map[chain.Commitment]struct{})
	for _, u := range spentUtxos {
		if u.Content.Kind != chain.ContentCustomKind {
			continue
		}
		if u.Content.Custom.Kind != chain.BitNamesCommitmentKind {
			continue
		}
		sc[u.Content.Custom.Commitment] = struct{}{}
	}
	return sc
}

// ValidateTxPure implements spec.md §4.4.2: the naming-layer
// predicate deciding whether tx may connect at blockHeight against
// snap, given the outputs its inputs resolve to (spentUtxos). It does
// not mutate snap; connect.go applies the effects separately once
// every transaction in a body has passed this check.
func ValidateTxPure(p crypto.Provider, snap Snapshot, spentUtxos []chain.Output, blockHeight uint32, tx chain.Transaction) error {
	sc := spentCommitments(spentUtxos)

	// Step A — commitment freshness.
	for c := range sc {
		h, ok := snap.CommitmentHeightOf(c)
		if !ok {
			return &chain.Error{
				Code:   chain.ErrCommitmentNotFound,
				Msg:    "spent commitment has no recorded confirmation height",
				Fields: map[string]any{"commitment": c},
			}
		}
		if blockHeight-h > CommitmentMaxAge {
			return &chain.Error{
				Code: chain.ErrRevealTooLate,
				Msg:  "commitment window elapsed",
				Fields: map[string]any{
					"commitment": c,
					"late_by":    blockHeight - h - CommitmentMaxAge,
				},
			}
		}
	}

	// Step B — reveal binding and tie-break.
	for _, o := range tx.Outputs {
		if o.Content.Kind != chain.ContentCustomKind || o.Content.Custom.Kind != chain.BitNamesRevealKind {
			continue
		}
		rd := o.Content.Custom.Reveal
		candidate := chain.Commitment(p.Commit([32]byte(rd.Key), rd.Salt))
		if _, ok := sc[candidate]; !ok {
			return &chain.Error{
				Code: chain.ErrInvalidNameCommitment,
				Msg:  "reveal does not match any spent commitment",
				Fields: map[string]any{
					"key":        rd.Key,
					"salt":       rd.Salt,
					"commitment": candidate,
				},
			}
		}

		if _, bound := snap.KeyValueOf(rd.Key); bound {
			// The winning commitment's own bookkeeping may already have
			// been swept (it matured more than CommitmentMaxAge blocks
			// ago); once that happens we can no longer prove a
			// candidate is older, so any further reveal for this key is
			// rejected outright rather than risk an unprovable override.
			prevCommitment, ok := snap.KeyCommitmentOf(rd.Key)
			if !ok {
				return &chain.Error{Code: chain.ErrKeyAlreadyRegistered, Msg: "key already registered by a since-expired commitment",
					Fields: map[string]any{"key": rd.Key}}
			}
			prevHeight, ok := snap.CommitmentHeightOf(prevCommitment)
			if !ok {
				return &chain.Error{Code: chain.ErrKeyAlreadyRegistered, Msg: "key already registered by a since-expired commitment",
					Fields: map[string]any{"key": rd.Key}}
			}
			// candidate is in sc, so its height was already resolved in step A.
			currHeight, _ := snap.CommitmentHeightOf(candidate)

			// The older commitment wins: only a strictly lower height
			// may replace the existing binding. A later commitment
			// (curr > prev) or a tying one (curr == prev) is rejected —
			// the registry is stable under ties.
			if !(currHeight < prevHeight) {
				return &chain.Error{
					Code: chain.ErrKeyAlreadyRegistered,
					Msg:  "key already registered by an equal-or-older commitment",
					Fields: map[string]any{
						"key":         rd.Key,
						"prev_height": prevHeight,
						"curr_height": currHeight,
					},
				}
			}
		}
	}

	// Step C — base UTXO rules.
	_, err := chain.ValidateTransaction(spentUtxos, tx)
	return err
}
