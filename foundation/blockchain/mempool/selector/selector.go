// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyArrival = "arrival"
	StrategyFee     = "fee"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyArrival: arrivalSelect,
	StrategyFee:     feeSelect,
}

// FeeFunc returns the fee a transaction pays, or false if the transaction
// can't currently be applied and must not be selected.
type FeeFunc func(tx database.Tx) (database.Value, bool)

// Func defines a function that takes the pending transactions in arrival
// order and selects howMany of them in an order based on the functions
// strategy. Receiving -1 for howMany must return all the selectable
// transactions in the strategies ordering.
type Func func(transactions []database.Tx, fee FeeFunc, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}
