package chain

// ValidateTransaction checks the generic, naming-layer-independent
// UTXO rules for a single transaction (spec.md §4.3): inputs resolve
// one-to-one against spentUtxos, inputs are pairwise distinct within
// the transaction, and value_out does not exceed value_in. It returns
// the fee (value_in - value_out) on success.
func ValidateTransaction(spentUtxos []Output, tx Transaction) (uint64, error) {
	if len(spentUtxos) != len(tx.Inputs) {
		return 0, newErr(ErrUnknownOutpoint, "spent utxo count does not match input count")
	}
	seen := make(map[OutPoint]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if _, dup := seen[in]; dup {
			return 0, newErr(ErrDoubleSpendInBody, "duplicate input within transaction")
		}
		seen[in] = struct{}{}
	}

	var valueIn, valueOut uint64
	for _, u := range spentUtxos {
		valueIn += u.Content.ValueOf()
	}
	for _, o := range tx.Outputs {
		valueOut += o.Content.ValueOf()
	}
	if valueOut > valueIn {
		return 0, newErrFields(ErrNotBalanced, "value_out exceeds value_in",
			map[string]any{"value_in": valueIn, "value_out": valueOut})
	}
	return valueIn - valueOut, nil
}

// ValidateBody checks that no OutPoint is spent twice across the
// whole body, then sums each transaction's fee via ValidateTransaction
// (spec.md §4.3). spentUtxosPerTx[i] must line up with
// body.Transactions[i]; subsidy/coinbase accounting is out of scope
// for this layer.
func ValidateBody(spentUtxosPerTx [][]Output, body Body) (uint64, error) {
	if len(spentUtxosPerTx) != len(body.Transactions) {
		return 0, newErr(ErrUnknownOutpoint, "spent utxo grouping does not match transaction count")
	}

	seen := make(map[OutPoint]struct{})
	for _, tx := range body.Transactions {
		for _, in := range tx.Inputs {
			if _, dup := seen[in]; dup {
				return 0, newErr(ErrDoubleSpendInBody, "outpoint spent twice within body")
			}
			seen[in] = struct{}{}
		}
	}

	var totalFee uint64
	for i, tx := range body.Transactions {
		fee, err := ValidateTransaction(spentUtxosPerTx[i], tx)
		if err != nil {
			return 0, err
		}
		totalFee += fee
	}
	return totalFee, nil
}
