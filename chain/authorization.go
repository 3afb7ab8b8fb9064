package chain

import "bitnames.dev/core/crypto"

// VerifyAuthorizations checks that tx carries exactly one valid
// authorization per input, each binding the corresponding spent
// UTXO's address to the signer and covering the same sig_message
// (spec.md §4.2). spentUtxos[i] must be the Output that tx.Inputs[i]
// resolves to.
func VerifyAuthorizations(p crypto.Provider, spentUtxos []Output, tx Transaction) error {
	if len(tx.Authorizations) != len(tx.Inputs) {
		return newErr(ErrMissingSignature, "authorization count does not match input count")
	}
	if len(spentUtxos) != len(tx.Inputs) {
		return newErr(ErrMissingSignature, "spent utxo count does not match input count")
	}

	message := SigMessage(p, tx)
	for i, auth := range tx.Authorizations {
		wantAddr := spentUtxos[i].Address
		gotAddr := p.DeriveAddress(auth.PublicKey)
		if gotAddr != wantAddr {
			return newErrFields(ErrWrongAddress, "authorization public key does not derive the spent output's address",
				map[string]any{"input": i})
		}
		if !p.Verify(auth.PublicKey, auth.Signature, message) {
			return newErrFields(ErrBadSignature, "signature does not verify over sig_message",
				map[string]any{"input": i})
		}
	}
	return nil
}

// VerifyAuthorizationsBody verifies each transaction in body in
// order. spentUtxosPerTx[i] must line up with body.Transactions[i].
func VerifyAuthorizationsBody(p crypto.Provider, spentUtxosPerTx [][]Output, body Body) error {
	if len(spentUtxosPerTx) != len(body.Transactions) {
		return newErr(ErrMissingSignature, "spent utxo grouping does not match transaction count")
	}
	for i, tx := range body.Transactions {
		if err := VerifyAuthorizations(p, spentUtxosPerTx[i], tx); err != nil {
			return err
		}
	}
	return nil
}
