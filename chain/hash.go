// Package chain defines the BitNames data model — the newtypes,
// transaction/body structures, canonical serialisation, merkle root,
// authorization, and base UTXO validation rules that are independent
// of the naming layer. The naming-aware state machine built on top of
// this package lives in bitnames.dev/core/state.
package chain

import "encoding/hex"

// Hash is the 256-bit output of content_hash.
type Hash [32]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Key, Value, Commitment, MerkleRoot and Txid are distinct wrappers
// around Hash. They are never interchangeable at the type level even
// though they share a representation — a Key can never be passed
// where a Commitment is expected without an explicit conversion.
type (
	Key        Hash
	Value      Hash
	Commitment Hash
	MerkleRoot Hash
	Txid       Hash
)

func (k Key) String() string        { return Hash(k).String() }
func (v Value) String() string      { return Hash(v).String() }
func (c Commitment) String() string { return Hash(c).String() }
func (m MerkleRoot) String() string { return Hash(m).String() }
func (t Txid) String() string       { return Hash(t).String() }

// Address is a 20-byte identifier derived from a public key
// (crypto.Provider.DeriveAddress).
type Address [20]byte

func (a Address) String() string { return hex.EncodeToString(a[:]) }
