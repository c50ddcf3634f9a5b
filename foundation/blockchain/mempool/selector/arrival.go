package selector

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// arrivalSelect returns the transactions in the order they arrived.
var arrivalSelect = func(transactions []database.Tx, fee FeeFunc, howMany int) []database.Tx {
	if howMany == -1 {
		howMany = len(transactions)
	}

	final := []database.Tx{}
	for _, tx := range transactions {
		if len(final) == howMany {
			break
		}

		if fee != nil {
			if _, ok := fee(tx); !ok {
				continue
			}
		}

		final = append(final, tx)
	}

	return final
}
