package chain

import "bitnames.dev/core/crypto"

// MerkleRootOf computes the binary merkle root over a body's
// transactions, content-hashing each transaction as a leaf and
// content-hashing concatenated pairs of 32-byte nodes going up the
// tree. An odd level duplicates its last node, the conventional
// balanced-tree construction. An empty transaction list yields the
// content hash of zero bytes.
func MerkleRootOf(p crypto.Provider, txs []Transaction) MerkleRoot {
	if len(txs) == 0 {
		return MerkleRoot(p.ContentHash(nil))
	}

	level := make([][32]byte, len(txs))
	for i, tx := range txs {
		level[i] = p.ContentHash(tx.Bytes())
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, len(level)/2)
		for i := 0; i < len(next); i++ {
			pair := make([]byte, 0, 64)
			pair = append(pair, level[2*i][:]...)
			pair = append(pair, level[2*i+1][:]...)
			next[i] = p.ContentHash(pair)
		}
		level = next
	}
	return MerkleRoot(level[0])
}
