package chain

import (
	"reflect"
	"testing"
)

func TestDecodeTransactionRoundTripsValueOutputs(t *testing.T) {
	tx := Transaction{
		Inputs: []OutPoint{
			DepositOutPoint(Hash{0x01}),
			RegularOutPoint(Txid{0x02}, 7),
		},
		Outputs: []Output{
			{Address: Address{0xAA}, Content: ValueContent(100)},
			{Address: Address{0xBB}, Content: ValueContent(0)},
		},
		Authorizations: []Authorization{
			{PublicKey: []byte("pub-1"), Signature: []byte("sig-1")},
			{PublicKey: []byte("pub-2"), Signature: []byte("sig-2")},
		},
	}

	got, err := DecodeTransaction(tx.Bytes())
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if !reflect.DeepEqual(got, tx) {
		t.Fatalf("round-tripped transaction differs:\n got  = %+v\n want = %+v", got, tx)
	}
}

func TestDecodeTransactionRoundTripsCommitmentAndReveal(t *testing.T) {
	tx := Transaction{
		Inputs: []OutPoint{RegularOutPoint(Txid{0x03}, 0)},
		Outputs: []Output{
			{Address: Address{0xCC}, Content: CustomContent(CommitmentOutput(Commitment{0xDD}))},
			{Address: Address{0xEE}, Content: CustomContent(RevealOutput(42, Key{0xFF}, Value{0x11}))},
		},
		Authorizations: []Authorization{{PublicKey: []byte("pub"), Signature: []byte("sig")}},
	}

	got, err := DecodeTransaction(tx.Bytes())
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if !reflect.DeepEqual(got, tx) {
		t.Fatalf("round-tripped transaction differs:\n got  = %+v\n want = %+v", got, tx)
	}
}

func TestDecodeTransactionEmpty(t *testing.T) {
	tx := Transaction{}
	got, err := DecodeTransaction(tx.Bytes())
	if err != nil {
		t.Fatalf("DecodeTransaction: %v", err)
	}
	if len(got.Inputs) != 0 || len(got.Outputs) != 0 || len(got.Authorizations) != 0 {
		t.Fatalf("expected all-empty transaction, got %+v", got)
	}
}

func TestDecodeTransactionRejectsTruncatedInput(t *testing.T) {
	tx := Transaction{
		Inputs:  []OutPoint{DepositOutPoint(Hash{0x01})},
		Outputs: []Output{{Address: Address{0xAA}, Content: ValueContent(5)}},
	}
	b := tx.Bytes()
	if _, err := DecodeTransaction(b[:len(b)-1]); err == nil {
		t.Fatalf("expected error decoding truncated bytes")
	}
}

func TestDecodeTransactionRejectsTrailingBytes(t *testing.T) {
	tx := Transaction{Inputs: []OutPoint{DepositOutPoint(Hash{0x01})}}
	b := append(tx.Bytes(), 0xFF)
	if _, err := DecodeTransaction(b); err == nil {
		t.Fatalf("expected error decoding bytes with trailing garbage")
	}
}

func TestDecodeTransactionRejectsUnknownOutPointKind(t *testing.T) {
	b := appendLen(nil, 1)
	b = appendU8(b, 9) // unknown OutPointKind
	if _, err := DecodeTransaction(b); err == nil {
		t.Fatalf("expected error decoding unknown outpoint kind")
	}
}
