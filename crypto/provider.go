// Package crypto provides the hash, commitment, and signature
// primitives used by the chain and state packages, behind a narrow
// Provider interface so the validation core never depends on a
// concrete algorithm choice.
package crypto

// Provider is the crypto interface used by the chain/state packages.
// A single implementation (Std) backs production use; tests may swap
// in a fake to exercise failure paths without real signatures.
type Provider interface {
	// ContentHash is the 256-bit content hash over canonical bytes,
	// used for txids, merkle roots, and the authorization message.
	ContentHash(data []byte) [32]byte

	// Commit is the keyed MAC binding a 32-byte key and an 8-byte
	// big-endian salt to a 32-byte commitment. Std keys the MAC with
	// key and MACs the salt bytes as the message.
	Commit(key [32]byte, salt uint64) [32]byte

	// DeriveAddress computes the address bound to a public key.
	DeriveAddress(pubkey []byte) [20]byte

	// Sign produces a signature over digest using priv.
	Sign(priv []byte, digest [32]byte) []byte

	// Verify reports whether sig is a valid signature by pubkey over digest.
	Verify(pubkey []byte, sig []byte, digest [32]byte) bool
}
