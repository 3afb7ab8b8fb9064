package state

import (
	"crypto/rand"

	"bitnames.dev/core/chain"
	"bitnames.dev/core/crypto"
	"golang.org/x/crypto/ed25519"
)

// testKey is a convenience keypair for building signed fixtures,
// mirroring the random-fixture builders of the upstream test suite
// this module was distilled from (random.rs).
type testKey struct {
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
	address chain.Address
}

func newTestKey(p crypto.Provider) testKey {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return testKey{pub: pub, priv: priv, address: p.DeriveAddress(pub)}
}

// sign authorizes tx on behalf of owners, one per input, in order.
func sign(p crypto.Provider, tx chain.Transaction, owners []testKey) chain.Transaction {
	msg := chain.SigMessage(p, tx)
	auths := make([]chain.Authorization, len(owners))
	for i, o := range owners {
		auths[i] = chain.Authorization{PublicKey: o.pub, Signature: p.Sign(o.priv, msg)}
	}
	tx.Authorizations = auths
	return tx
}

// newHarness returns a fresh Driver seeded with one deposit UTXO of
// value owned by owner, plus the OutPoint identifying it.
func newHarness(value uint64) (*Driver, chain.OutPoint, testKey) {
	p := crypto.Std{}
	owner := newTestKey(p)
	db := New()
	d := NewDriver(p, db, nil)

	depositID := chain.Hash{0xd0}
	op := chain.DepositOutPoint(depositID)
	if err := d.ConnectDeposits(map[chain.OutPoint]chain.Output{
		op: {Address: owner.address, Content: chain.ValueContent(value)},
	}); err != nil {
		panic(err)
	}
	return d, op, owner
}
