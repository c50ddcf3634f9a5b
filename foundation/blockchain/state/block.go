package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Set of reasons a block is rejected.
var (
	ErrNilBlock        = errors.New("no block provided")
	ErrGenesisBlock    = errors.New("block has no previous block hash")
	ErrInvalidCoinbase = errors.New("invalid coinbase")
	ErrMalformed       = errors.New("block is malformed")
	ErrUnknownParent   = errors.New("previous block is not known")
	ErrTooOld          = errors.New("block is too far behind the best chain")
)

// =============================================================================

// AddBlock adds the block to the chain if it is valid, returning true when the
// block was accepted. See ProcessBlock for the rules.
func (s *State) AddBlock(block *database.Block) bool {
	return s.ProcessBlock(block) == nil
}

// ProcessBlock validates the block and, if that passes, records it on top of
// its parent. A block is rejected when:
//
//	(1) it is missing or has no previous block hash,
//	(2) its coinbase is missing or doesn't pay exactly the coinbase reward,
//	(3) its merkle root doesn't match its transactions,
//	(4) its parent is not a tracked block,
//	(5) its height is not above the max height minus the cut off age.
//
// The transactions of an accepted block are applied to the parent's pool in
// block order after the coinbase. Transactions that are not valid at their
// position are left out of the pool but the block is still accepted. Adding a
// block that is already tracked is accepted and changes nothing.
func (s *State) ProcessBlock(block *database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.processBlock(block); err != nil {
		metrics.rejected.WithLabelValues(reason(err)).Inc()
		s.evHandler("state: ProcessBlock: rejected: %s", err)
		return err
	}

	return nil
}

// processBlock performs the work for ProcessBlock. The caller must hold the
// write lock.
func (s *State) processBlock(block *database.Block) error {
	if block == nil {
		return ErrNilBlock
	}

	if block.IsGenesis() {
		return ErrGenesisBlock
	}

	coinbase := block.Coinbase
	switch {
	case coinbase == nil:
		return fmt.Errorf("%w: missing", ErrInvalidCoinbase)
	case len(coinbase.Inputs) != 0 || len(coinbase.Outputs) != 1:
		return fmt.Errorf("%w: in[%d]: out[%d]", ErrInvalidCoinbase, len(coinbase.Inputs), len(coinbase.Outputs))
	case coinbase.Outputs[0].Value != s.coinbaseReward:
		return fmt.Errorf("%w: value %d, exp %d", ErrInvalidCoinbase, coinbase.Outputs[0].Value, s.coinbaseReward)
	}

	if err := block.ValidateRoot(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	hash := block.Hash()
	if _, exists := s.blocks[hash]; exists {
		s.evHandler("state: ProcessBlock: already tracked: blk[%s]", hash)
		return nil
	}

	parent, exists := s.blocks[block.Header.PrevBlockHash]
	if !exists {
		return fmt.Errorf("%w: prevBlk[%s]", ErrUnknownParent, block.Header.PrevBlockHash)
	}

	height := parent.height + 1
	if height+s.cutOffAge <= s.maxInfo.height {
		return fmt.Errorf("%w: height %d, max %d, cut off %d", ErrTooOld, height, s.maxInfo.height, s.cutOffAge)
	}

	// Derive the pool for this block from the parent's pool. The coinbase is
	// applied first and unconditionally.
	base := parent.pool.Copy()
	base.Apply(*coinbase)
	accepted, pool := s.handler.Handle(block.Trans, base)

	info := blockInfo{
		block:  block.Clone(),
		height: height,
		pool:   pool,
	}
	s.blocks[hash] = &info

	s.evHandler("state: ProcessBlock: accepted: blk[%s]: prevBlk[%s]: height[%d]: trans[%d/%d]", hash, block.Header.PrevBlockHash, height, len(accepted), len(block.Trans))

	if height > s.maxInfo.height {
		s.maxInfo = &info
		s.prune()
		metrics.maxHeight.Set(float64(height))
	}

	// These transactions no longer need to be mined, whichever branch
	// accepted them.
	for _, tx := range block.Trans {
		s.mempool.Delete(tx.Hash())
	}

	metrics.accepted.Inc()
	metrics.retained.Set(float64(len(s.blocks)))
	metrics.pending.Set(float64(s.mempool.Count()))

	return nil
}

// prune releases every block that can no longer be a parent. A block at
// height h can be extended while h+1 is above the max height minus the cut
// off age. One extra height is retained so blocks arriving just behind the
// window are reported as too old rather than unknown. The caller must hold
// the write lock.
func (s *State) prune() {
	for hash, info := range s.blocks {
		if info.height+s.cutOffAge+1 < s.maxInfo.height {
			delete(s.blocks, hash)
			s.evHandler("state: prune: released: blk[%s]: height[%d]", hash, info.height)
		}
	}
}

// reason maps a rejection to the metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrNilBlock):
		return "nil"
	case errors.Is(err, ErrGenesisBlock):
		return "genesis"
	case errors.Is(err, ErrInvalidCoinbase):
		return "coinbase"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrUnknownParent):
		return "unknown_parent"
	case errors.Is(err, ErrTooOld):
		return "too_old"
	}
	return "other"
}
