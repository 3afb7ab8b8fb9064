// Package storage persists a state.StateDB to a bbolt key/value file,
// the backing store spec.md §2 calls out as a pluggable dependency of
// the naming-layer core. The encoding here is an engineering
// persistence format, not a consensus wire format: it never needs to
// be reproduced bit-for-bit across versions, only round-tripped by
// this package.
package storage

import (
	"encoding/binary"
	"fmt"

	"bitnames.dev/core/chain"
)

// outpointKeySize is the fixed-width key used for chain.OutPoint:
// kind(1) || hash(32) || vout(4), where hash is Txid for Regular and
// DepositID for Deposit. Unused trailing bytes (vout, for Deposit)
// are zero, matching the teacher's fixed txid(32)||vout(4) layout
// extended with a discriminant byte for the second OutPoint variant.
const outpointKeySize = 1 + 32 + 4

func encodeOutPoint(p chain.OutPoint) []byte {
	out := make([]byte, outpointKeySize)
	out[0] = byte(p.Kind)
	switch p.Kind {
	case chain.OutPointRegular:
		copy(out[1:33], p.Txid[:])
		binary.LittleEndian.PutUint32(out[33:37], p.Vout)
	case chain.OutPointDeposit:
		copy(out[1:33], p.DepositID[:])
	}
	return out
}

func decodeOutPoint(b []byte) (chain.OutPoint, error) {
	if len(b) != outpointKeySize {
		return chain.OutPoint{}, fmt.Errorf("storage: outpoint key: expected %d bytes, got %d", outpointKeySize, len(b))
	}
	kind := chain.OutPointKind(b[0])
	var hash chain.Hash
	copy(hash[:], b[1:33])
	switch kind {
	case chain.OutPointRegular:
		return chain.RegularOutPoint(chain.Txid(hash), binary.LittleEndian.Uint32(b[33:37])), nil
	case chain.OutPointDeposit:
		return chain.DepositOutPoint(hash), nil
	default:
		return chain.OutPoint{}, fmt.Errorf("storage: outpoint key: unknown kind %d", kind)
	}
}

// outputValueSize is the fixed-width encoding of a chain.Output:
// address(20) || content_kind(1) || value(8) || custom_kind(1) ||
// commitment(32) || salt(8) || reveal_key(32) || reveal_value(32).
// Every field is fixed size, so unlike utxo_encoding.go's CompactSize
// covenant blob this needs no length prefix at all.
const outputValueSize = 20 + 1 + 8 + 1 + 32 + 8 + 32 + 32

func encodeOutput(o chain.Output) []byte {
	out := make([]byte, outputValueSize)
	off := 0
	copy(out[off:off+20], o.Address[:])
	off += 20
	out[off] = byte(o.Content.Kind)
	off++
	binary.LittleEndian.PutUint64(out[off:off+8], o.Content.Value)
	off += 8
	out[off] = byte(o.Content.Custom.Kind)
	off++
	copy(out[off:off+32], o.Content.Custom.Commitment[:])
	off += 32
	binary.LittleEndian.PutUint64(out[off:off+8], o.Content.Custom.Reveal.Salt)
	off += 8
	copy(out[off:off+32], o.Content.Custom.Reveal.Key[:])
	off += 32
	copy(out[off:off+32], o.Content.Custom.Reveal.Value[:])
	return out
}

func decodeOutput(b []byte) (chain.Output, error) {
	if len(b) != outputValueSize {
		return chain.Output{}, fmt.Errorf("storage: output value: expected %d bytes, got %d", outputValueSize, len(b))
	}
	var o chain.Output
	off := 0
	copy(o.Address[:], b[off:off+20])
	off += 20
	o.Content.Kind = chain.ContentKind(b[off])
	off++
	o.Content.Value = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	o.Content.Custom.Kind = chain.BitNamesKind(b[off])
	off++
	copy(o.Content.Custom.Commitment[:], b[off:off+32])
	off += 32
	o.Content.Custom.Reveal.Salt = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	copy(o.Content.Custom.Reveal.Key[:], b[off:off+32])
	off += 32
	copy(o.Content.Custom.Reveal.Value[:], b[off:off+32])
	return o, nil
}

func encodeU32(v uint32) []byte {
	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], v)
	return out[:]
}

func decodeU32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("storage: u32: expected 4 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}
