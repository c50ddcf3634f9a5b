package selector

import (
	"cmp"
	"slices"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// feeSelect returns the transactions paying the best fee. Transactions paying
// the same fee keep their arrival order.
var feeSelect = func(transactions []database.Tx, fee FeeFunc, howMany int) []database.Tx {
	type ranked struct {
		tx  database.Tx
		fee database.Value
	}

	var candidates []ranked
	for _, tx := range transactions {
		var f database.Value
		if fee != nil {
			var ok bool
			if f, ok = fee(tx); !ok {
				continue
			}
		}

		candidates = append(candidates, ranked{tx: tx, fee: f})
	}

	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(b.fee, a.fee)
	})

	if howMany == -1 || howMany > len(candidates) {
		howMany = len(candidates)
	}

	final := make([]database.Tx, howMany)
	for i := range final {
		final[i] = candidates[i].tx
	}

	return final
}
