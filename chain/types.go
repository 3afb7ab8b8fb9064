package chain

import "bitnames.dev/core/crypto"

// OutPointKind discriminates the two OutPoint variants. Declaration
// order fixes the wire discriminant byte (spec.md §6).
type OutPointKind uint8

const (
	OutPointRegular OutPointKind = 0
	OutPointDeposit OutPointKind = 1
)

// OutPoint references either the vout-th output of a past
// transaction (Regular) or an externally-originated UTXO such as a
// peg-in or genesis deposit (Deposit). It is comparable and usable as
// a map key directly.
type OutPoint struct {
	Kind OutPointKind

	// Regular fields.
	Txid Txid
	Vout uint32

	// Deposit fields.
	DepositID Hash
}

func RegularOutPoint(txid Txid, vout uint32) OutPoint {
	return OutPoint{Kind: OutPointRegular, Txid: txid, Vout: vout}
}

func DepositOutPoint(id Hash) OutPoint {
	return OutPoint{Kind: OutPointDeposit, DepositID: id}
}

func (p OutPoint) marshal(dst []byte) []byte {
	dst = appendU8(dst, uint8(p.Kind))
	switch p.Kind {
	case OutPointRegular:
		dst = appendHash(dst, [32]byte(p.Txid))
		dst = appendU32le(dst, p.Vout)
	case OutPointDeposit:
		dst = appendHash(dst, [32]byte(p.DepositID))
	}
	return dst
}

// ContentKind discriminates the two Content variants.
type ContentKind uint8

const (
	ContentValueKind  ContentKind = 0
	ContentCustomKind ContentKind = 1
)

// BitNamesKind discriminates the two BitNamesOutput variants.
type BitNamesKind uint8

const (
	BitNamesCommitmentKind BitNamesKind = 0
	BitNamesRevealKind     BitNamesKind = 1
)

// RevealData is the payload of a BitNamesOutput Reveal variant.
type RevealData struct {
	Salt  uint64
	Key   Key
	Value Value
}

// BitNamesOutput is the naming-layer payload carried by
// Content.Custom: either a published Commitment or a Reveal
// disclosing the (salt, key, value) preimage of a spent commitment.
type BitNamesOutput struct {
	Kind       BitNamesKind
	Commitment Commitment
	Reveal     RevealData
}

func CommitmentOutput(c Commitment) BitNamesOutput {
	return BitNamesOutput{Kind: BitNamesCommitmentKind, Commitment: c}
}

func RevealOutput(salt uint64, key Key, value Value) BitNamesOutput {
	return BitNamesOutput{Kind: BitNamesRevealKind, Reveal: RevealData{Salt: salt, Key: key, Value: value}}
}

func (o BitNamesOutput) marshal(dst []byte) []byte {
	dst = appendU8(dst, uint8(o.Kind))
	switch o.Kind {
	case BitNamesCommitmentKind:
		dst = appendHash(dst, [32]byte(o.Commitment))
	case BitNamesRevealKind:
		dst = appendU64le(dst, o.Reveal.Salt)
		dst = appendHash(dst, [32]byte(o.Reveal.Key))
		dst = appendHash(dst, [32]byte(o.Reveal.Value))
	}
	return dst
}

// Content is the sum of an ordinary transferable value and a
// naming-layer custom payload. Custom content always carries zero
// monetary value (spec.md §4.3).
type Content struct {
	Kind   ContentKind
	Value  uint64
	Custom BitNamesOutput
}

func ValueContent(v uint64) Content {
	return Content{Kind: ContentValueKind, Value: v}
}

func CustomContent(c BitNamesOutput) Content {
	return Content{Kind: ContentCustomKind, Custom: c}
}

// ValueOf returns the value() of Content per spec.md §4.3: v for
// Content::Value(v), 0 for Content::Custom(_).
func (c Content) ValueOf() uint64 {
	if c.Kind == ContentValueKind {
		return c.Value
	}
	return 0
}

func (c Content) marshal(dst []byte) []byte {
	dst = appendU8(dst, uint8(c.Kind))
	switch c.Kind {
	case ContentValueKind:
		dst = appendU64le(dst, c.Value)
	case ContentCustomKind:
		dst = c.Custom.marshal(dst)
	}
	return dst
}

// Output pairs an owning address with its content.
type Output struct {
	Address Address
	Content Content
}

func (o Output) marshal(dst []byte) []byte {
	dst = append(dst, o.Address[:]...)
	dst = o.Content.marshal(dst)
	return dst
}

// Authorization carries the public key and signature for one input,
// in the same order as Transaction.Inputs.
type Authorization struct {
	PublicKey []byte
	Signature []byte
}

func (a Authorization) marshal(dst []byte) []byte {
	dst = appendBytes(dst, a.PublicKey)
	dst = appendBytes(dst, a.Signature)
	return dst
}

// Transaction is the canonical BitNames transaction: a list of
// inputs, a list of outputs, and one authorization per input.
type Transaction struct {
	Inputs         []OutPoint
	Outputs        []Output
	Authorizations []Authorization
}

// withoutAuthorizations returns a shallow copy of tx with
// Authorizations cleared, used to compute sig_message.
func (tx Transaction) withoutAuthorizations() Transaction {
	return Transaction{Inputs: tx.Inputs, Outputs: tx.Outputs}
}

func (tx Transaction) marshal(dst []byte) []byte {
	dst = appendLen(dst, len(tx.Inputs))
	for _, in := range tx.Inputs {
		dst = in.marshal(dst)
	}
	dst = appendLen(dst, len(tx.Outputs))
	for _, out := range tx.Outputs {
		dst = out.marshal(dst)
	}
	dst = appendLen(dst, len(tx.Authorizations))
	for _, a := range tx.Authorizations {
		dst = a.marshal(dst)
	}
	return dst
}

// Bytes returns the canonical serialisation of tx, the input to
// content_hash when computing a txid or sig_message.
func (tx Transaction) Bytes() []byte {
	return tx.marshal(nil)
}

// TxID is content_hash(tx) over the full canonical transaction,
// including authorizations. It identifies the transaction as the
// parent of its own outputs' Regular OutPoints.
func TxID(p crypto.Provider, tx Transaction) Txid {
	return Txid(p.ContentHash(tx.Bytes()))
}

// SigMessage is content_hash(tx with authorizations := []), the
// message every per-input signature in tx must cover (spec.md §4.2).
func SigMessage(p crypto.Provider, tx Transaction) [32]byte {
	return p.ContentHash(tx.withoutAuthorizations().Bytes())
}

// Body is the transaction-bearing content of a block.
type Body struct {
	Transactions []Transaction
	Coinbase     []Output
}
