package state

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// MaxHeightBlock returns a copy of the block at the maximum height. When more
// than one block shares that height the earliest accepted is returned.
func (s *State) MaxHeightBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxInfo.block.Clone()
}

// MaxHeight returns the height of the best chain. The genesis block is at
// height 1.
func (s *State) MaxHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxInfo.height
}

// MaxHeightUTXOPool returns a copy of the unspent outputs after the block at
// the maximum height.
func (s *State) MaxHeightUTXOPool() *database.UTXOPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxInfo.pool.Copy()
}

// TransactionPool returns the pending transactions in arrival order.
func (s *State) TransactionPool() []database.Tx {
	return s.mempool.Copy()
}

// BlockHeight returns the height of a tracked block.
func (s *State) BlockHeight(hash database.Hash) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.blocks[hash]
	if !exists {
		return 0, false
	}
	return info.height, true
}

// UTXOPool returns a copy of the unspent outputs after a tracked block.
func (s *State) UTXOPool(hash database.Hash) (*database.UTXOPool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.blocks[hash]
	if !exists {
		return nil, false
	}
	return info.pool.Copy(), true
}

// Retained returns the number of blocks currently tracked.
func (s *State) Retained() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blocks)
}
