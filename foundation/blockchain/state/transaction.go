package state

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// AddTransaction adds the transaction to the mempool. No validation is
// performed here, a transaction is only checked when a block is built or
// accepted.
func (s *State) AddTransaction(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Upsert(tx)
	metrics.pending.Set(float64(n))

	s.evHandler("state: AddTransaction: tx[%s]: pending[%d]", tx.Hash(), n)
}

// PickBest returns up to howMany pending transactions that can be applied on
// top of the best chain, ordered by the configured select strategy. Pass -1
// for all of them.
func (s *State) PickBest(howMany int) []database.Tx {
	pool := s.MaxHeightUTXOPool()

	fee := func(tx database.Tx) (database.Value, bool) {
		return s.handler.Fee(tx, pool)
	}

	return s.mempool.PickBest(howMany, fee)
}
