package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

// Std is the reference Provider: SHA3-256 for content_hash, a
// Key-keyed BLAKE2b-256 MAC for commit, and Ed25519 for signing.
// The two hash families are deliberately distinct so a commitment can
// never collide with a content hash by construction.
type Std struct{}

func (Std) ContentHash(data []byte) [32]byte {
	h := sha3.New256()
	_, _ = h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Commit MACs the big-endian salt under a Key-keyed BLAKE2b-256,
// modelled on the blake2b_hmac construction of the upstream
// implementation this module was distilled from. The salt is the MAC's
// message; it is not passed as a BLAKE2b salt or personalization
// parameter, and the message is never empty.
func (Std) Commit(key [32]byte, salt uint64) [32]byte {
	mac, err := blake2b.New256(key[:])
	if err != nil {
		// blake2b.New256 only fails for keys longer than 64 bytes;
		// key is fixed at 32 bytes so this is unreachable.
		panic("crypto: blake2b keyed MAC: " + err.Error())
	}
	var saltBE [8]byte
	binary.BigEndian.PutUint64(saltBE[:], salt)
	_, _ = mac.Write(saltBE[:])
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

func (Std) DeriveAddress(pubkey []byte) [20]byte {
	h := sha3.New256()
	_, _ = h.Write(pubkey)
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (Std) Sign(priv []byte, digest [32]byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv), digest[:])
}

func (Std) Verify(pubkey []byte, sig []byte, digest [32]byte) bool {
	if len(pubkey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), digest[:], sig)
}
