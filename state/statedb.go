// Package state implements the BitNames naming-layer state machine:
// the persistent StateDB tables, the pure validation predicate that
// decides whether a transaction may connect, and the connect protocol
// that mutates state once a body has been accepted. This is the main
// deliverable of this module (spec.md §2 component 5).
package state

import "bitnames.dev/core/chain"

// CommitmentMaxAge is the number of blocks a Commitment stays Live
// after confirmation (spec.md §4.4.1). A Reveal spending a Commitment
// confirmed at height h connects only in h+1..h+CommitmentMaxAge.
// Changing this constant changes the consensus rules.
const CommitmentMaxAge = 1

// StateDB holds the seven persistent tables of spec.md §3. The zero
// value is not usable; construct with New.
type StateDB struct {
	Utxos              map[chain.OutPoint]chain.Output
	CommitmentHeight    map[chain.Commitment]uint32
	CommitmentOutpoint  map[chain.Commitment]chain.OutPoint
	KeyCommitment       map[chain.Key]chain.Commitment
	CommitmentKey       map[chain.Commitment]chain.Key
	KeyValue            map[chain.Key]chain.Value
	BestBlockHeight      uint32
}

// New returns an empty StateDB (height 0, no UTXOs, no commitments).
func New() *StateDB {
	return &StateDB{
		Utxos:              make(map[chain.OutPoint]chain.Output),
		CommitmentHeight:   make(map[chain.Commitment]uint32),
		CommitmentOutpoint: make(map[chain.Commitment]chain.OutPoint),
		KeyCommitment:      make(map[chain.Key]chain.Commitment),
		CommitmentKey:      make(map[chain.Commitment]chain.Key),
		KeyValue:           make(map[chain.Key]chain.Value),
	}
}

// clone returns a deep-enough copy of s: every table is a fresh map
// with the same entries, so mutating the clone never touches s. This
// is the staging buffer spec.md §5 requires connect_body to build its
// mutations in, swapped into place only once a body is fully valid.
func (s *StateDB) clone() *StateDB {
	c := &StateDB{
		Utxos:              make(map[chain.OutPoint]chain.Output, len(s.Utxos)),
		CommitmentHeight:   make(map[chain.Commitment]uint32, len(s.CommitmentHeight)),
		CommitmentOutpoint: make(map[chain.Commitment]chain.OutPoint, len(s.CommitmentOutpoint)),
		KeyCommitment:      make(map[chain.Key]chain.Commitment, len(s.KeyCommitment)),
		CommitmentKey:      make(map[chain.Commitment]chain.Key, len(s.CommitmentKey)),
		KeyValue:           make(map[chain.Key]chain.Value, len(s.KeyValue)),
		BestBlockHeight:    s.BestBlockHeight,
	}
	for k, v := range s.Utxos {
		c.Utxos[k] = v
	}
	for k, v := range s.CommitmentHeight {
		c.CommitmentHeight[k] = v
	}
	for k, v := range s.CommitmentOutpoint {
		c.CommitmentOutpoint[k] = v
	}
	for k, v := range s.KeyCommitment {
		c.KeyCommitment[k] = v
	}
	for k, v := range s.CommitmentKey {
		c.CommitmentKey[k] = v
	}
	for k, v := range s.KeyValue {
		c.KeyValue[k] = v
	}
	return c
}

// adopt replaces s's tables with staging's, the atomic "swap on
// success" step of spec.md §5. Callers must hold s's write lock.
func (s *StateDB) adopt(staging *StateDB) {
	*s = *staging
}

// Snapshot is the read-only view ValidateTxPure validates against. A
// *StateDB satisfies it directly via the accessor methods below; tests
// may implement a fake to probe failure paths without building a
// whole StateDB.
type Snapshot interface {
	UtxoAt(op chain.OutPoint) (chain.Output, bool)
	CommitmentHeightOf(c chain.Commitment) (uint32, bool)
	KeyValueOf(k chain.Key) (chain.Value, bool)
	KeyCommitmentOf(k chain.Key) (chain.Commitment, bool)
}

func (s *StateDB) UtxoAt(op chain.OutPoint) (chain.Output, bool) {
	o, ok := s.Utxos[op]
	return o, ok
}

func (s *StateDB) CommitmentHeightOf(c chain.Commitment) (uint32, bool) {
	h, ok := s.CommitmentHeight[c]
	return h, ok
}

func (s *StateDB) KeyValueOf(k chain.Key) (chain.Value, bool) {
	v, ok := s.KeyValue[k]
	return v, ok
}

func (s *StateDB) KeyCommitmentOf(k chain.Key) (chain.Commitment, bool) {
	c, ok := s.KeyCommitment[k]
	return c, ok
}
