package chain

import (
	"encoding/binary"
	"fmt"
)

// Canonical serialisation (spec.md §6): little-endian integers
// everywhere except the HMAC salt (handled in crypto.Std.Commit,
// which takes the salt as a plain uint64 and encodes it big-endian
// itself); sequences are length-prefixed with a 64-bit little-endian
// count; sum-type discriminants are single bytes in declaration
// order. This is the exact byte format that content_hash and
// sig_message are computed over, so it must stay bit-for-bit
// reproducible across versions of this package.

func appendU8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

func appendU32le(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func appendU64le(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

func appendLen(dst []byte, n int) []byte {
	return appendU64le(dst, uint64(n))
}

func appendBytes(dst []byte, b []byte) []byte {
	dst = appendLen(dst, len(b))
	return append(dst, b...)
}

func appendHash(dst []byte, h [32]byte) []byte {
	return append(dst, h[:]...)
}

// cursor reads canonical bytes back. DecodeTransaction is its only
// production call site; validation and storage never parse a
// Transaction back out of bytes.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor { return &cursor{b: b} }

func (c *cursor) remaining() int {
	if c.pos >= len(c.b) {
		return 0
	}
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("chain: parse: truncated")
	}
	start := c.pos
	c.pos += n
	return c.b[start:c.pos], nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU32le() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU64le() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readLen() (int, error) {
	n, err := c.readU64le()
	if err != nil {
		return 0, err
	}
	if n > (1 << 32) {
		return 0, fmt.Errorf("chain: parse: length %d implausible", n)
	}
	return int(n), nil
}

func (c *cursor) readBytes() ([]byte, error) {
	n, err := c.readLen()
	if err != nil {
		return nil, err
	}
	b, err := c.readExact(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (c *cursor) readHash() ([32]byte, error) {
	var out [32]byte
	b, err := c.readExact(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func decodeOutPoint(c *cursor) (OutPoint, error) {
	kind, err := c.readU8()
	if err != nil {
		return OutPoint{}, fmt.Errorf("chain: parse outpoint: %w", err)
	}
	switch OutPointKind(kind) {
	case OutPointRegular:
		h, err := c.readHash()
		if err != nil {
			return OutPoint{}, fmt.Errorf("chain: parse outpoint txid: %w", err)
		}
		vout, err := c.readU32le()
		if err != nil {
			return OutPoint{}, fmt.Errorf("chain: parse outpoint vout: %w", err)
		}
		return RegularOutPoint(Txid(h), vout), nil
	case OutPointDeposit:
		h, err := c.readHash()
		if err != nil {
			return OutPoint{}, fmt.Errorf("chain: parse outpoint deposit id: %w", err)
		}
		return DepositOutPoint(Hash(h)), nil
	default:
		return OutPoint{}, fmt.Errorf("chain: parse outpoint: unknown kind %d", kind)
	}
}

func decodeBitNamesOutput(c *cursor) (BitNamesOutput, error) {
	kind, err := c.readU8()
	if err != nil {
		return BitNamesOutput{}, fmt.Errorf("chain: parse bitnames output: %w", err)
	}
	switch BitNamesKind(kind) {
	case BitNamesCommitmentKind:
		h, err := c.readHash()
		if err != nil {
			return BitNamesOutput{}, fmt.Errorf("chain: parse commitment: %w", err)
		}
		return CommitmentOutput(Commitment(h)), nil
	case BitNamesRevealKind:
		salt, err := c.readU64le()
		if err != nil {
			return BitNamesOutput{}, fmt.Errorf("chain: parse reveal salt: %w", err)
		}
		key, err := c.readHash()
		if err != nil {
			return BitNamesOutput{}, fmt.Errorf("chain: parse reveal key: %w", err)
		}
		value, err := c.readHash()
		if err != nil {
			return BitNamesOutput{}, fmt.Errorf("chain: parse reveal value: %w", err)
		}
		return RevealOutput(salt, Key(key), Value(value)), nil
	default:
		return BitNamesOutput{}, fmt.Errorf("chain: parse bitnames output: unknown kind %d", kind)
	}
}

func decodeContent(c *cursor) (Content, error) {
	kind, err := c.readU8()
	if err != nil {
		return Content{}, fmt.Errorf("chain: parse content: %w", err)
	}
	switch ContentKind(kind) {
	case ContentValueKind:
		v, err := c.readU64le()
		if err != nil {
			return Content{}, fmt.Errorf("chain: parse content value: %w", err)
		}
		return ValueContent(v), nil
	case ContentCustomKind:
		custom, err := decodeBitNamesOutput(c)
		if err != nil {
			return Content{}, err
		}
		return CustomContent(custom), nil
	default:
		return Content{}, fmt.Errorf("chain: parse content: unknown kind %d", kind)
	}
}

func decodeOutput(c *cursor) (Output, error) {
	addrBytes, err := c.readExact(20)
	if err != nil {
		return Output{}, fmt.Errorf("chain: parse output address: %w", err)
	}
	var addr Address
	copy(addr[:], addrBytes)
	content, err := decodeContent(c)
	if err != nil {
		return Output{}, err
	}
	return Output{Address: addr, Content: content}, nil
}

func decodeAuthorization(c *cursor) (Authorization, error) {
	pub, err := c.readBytes()
	if err != nil {
		return Authorization{}, fmt.Errorf("chain: parse authorization public key: %w", err)
	}
	sig, err := c.readBytes()
	if err != nil {
		return Authorization{}, fmt.Errorf("chain: parse authorization signature: %w", err)
	}
	return Authorization{PublicKey: pub, Signature: sig}, nil
}

// DecodeTransaction parses the canonical serialisation produced by
// Transaction.Bytes. It is the inverse of marshal, for a caller that
// needs to recover a Transaction from bytes rather than build one
// directly; no other package in this module calls it.
func DecodeTransaction(b []byte) (Transaction, error) {
	c := newCursor(b)

	nIn, err := c.readLen()
	if err != nil {
		return Transaction{}, fmt.Errorf("chain: parse inputs length: %w", err)
	}
	inputs := make([]OutPoint, nIn)
	for i := range inputs {
		inputs[i], err = decodeOutPoint(c)
		if err != nil {
			return Transaction{}, err
		}
	}

	nOut, err := c.readLen()
	if err != nil {
		return Transaction{}, fmt.Errorf("chain: parse outputs length: %w", err)
	}
	outputs := make([]Output, nOut)
	for i := range outputs {
		outputs[i], err = decodeOutput(c)
		if err != nil {
			return Transaction{}, err
		}
	}

	nAuth, err := c.readLen()
	if err != nil {
		return Transaction{}, fmt.Errorf("chain: parse authorizations length: %w", err)
	}
	auths := make([]Authorization, nAuth)
	for i := range auths {
		auths[i], err = decodeAuthorization(c)
		if err != nil {
			return Transaction{}, err
		}
	}

	if c.remaining() != 0 {
		return Transaction{}, fmt.Errorf("chain: parse transaction: %d trailing bytes", c.remaining())
	}

	return Transaction{Inputs: inputs, Outputs: outputs, Authorizations: auths}, nil
}
