package chain

import (
	"testing"

	"bitnames.dev/core/crypto"
)

func TestMerkleRootOfDeterministicAndSensitiveToOrder(t *testing.T) {
	p := crypto.Std{}
	tx1 := Transaction{Outputs: []Output{{Address: Address{1}, Content: ValueContent(1)}}}
	tx2 := Transaction{Outputs: []Output{{Address: Address{2}, Content: ValueContent(2)}}}
	tx3 := Transaction{Outputs: []Output{{Address: Address{3}, Content: ValueContent(3)}}}

	r1 := MerkleRootOf(p, []Transaction{tx1, tx2, tx3})
	r2 := MerkleRootOf(p, []Transaction{tx1, tx2, tx3})
	if r1 != r2 {
		t.Fatalf("merkle root not deterministic")
	}

	r3 := MerkleRootOf(p, []Transaction{tx3, tx2, tx1})
	if r1 == r3 {
		t.Fatalf("merkle root insensitive to transaction order")
	}
}

func TestMerkleRootOfEmpty(t *testing.T) {
	p := crypto.Std{}
	r := MerkleRootOf(p, nil)
	want := MerkleRoot(p.ContentHash(nil))
	if r != want {
		t.Fatalf("empty body merkle root mismatch")
	}
}
