// Package state is the core API for the blockchain ledger and implements all
// the business rules for accepting blocks and tracking competing branches.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/utxochain/foundation/blockchain/txhandler"
)

// CutOffAge is the default number of blocks a branch may fall behind the
// best chain and still be extended.
const CutOffAge = 10

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the ledger. The
// coinbase reward and cut off age fall back to the package defaults when
// they are not set.
type Config struct {
	Genesis        database.Block
	Verifier       txhandler.Verifier
	CoinbaseReward database.Value
	CutOffAge      uint64
	SelectStrategy string
	EvHandler      EventHandler
}

// blockInfo is what is retained for every accepted block. The pool is the
// set of unspent outputs after applying every block from genesis to this
// one and is never changed once stored.
type blockInfo struct {
	block  database.Block
	height uint64
	pool   *database.UTXOPool
}

// State manages the competing branches of the blockchain.
type State struct {
	mu sync.RWMutex

	coinbaseReward database.Value
	cutOffAge      uint64
	evHandler      EventHandler

	handler *txhandler.Handler
	mempool *mempool.Mempool
	blocks  map[database.Hash]*blockInfo
	maxInfo *blockInfo
}

// New constructs a ledger holding only the trusted genesis block.
func New(cfg Config) (*State, error) {
	if cfg.Verifier == nil {
		return nil, errors.New("a signature verifier is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.CoinbaseReward == 0 {
		cfg.CoinbaseReward = database.CoinbaseReward
	}
	if cfg.CutOffAge == 0 {
		cfg.CutOffAge = CutOffAge
	}
	if cfg.SelectStrategy == "" {
		cfg.SelectStrategy = selector.StrategyArrival
	}

	// Construct a mempool with the specified select strategy.
	mp, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	handler := txhandler.New(cfg.Verifier)

	// The genesis block is trusted. Its coinbase is applied to an empty pool
	// and its transactions, if any, are applied on top.
	pool := database.NewUTXOPool()
	if cfg.Genesis.Coinbase != nil {
		pool.Apply(*cfg.Genesis.Coinbase)
	}
	_, pool = handler.Handle(cfg.Genesis.Trans, pool)

	genesis := blockInfo{
		block:  cfg.Genesis.Clone(),
		height: 1,
		pool:   pool,
	}

	state := State{
		coinbaseReward: cfg.CoinbaseReward,
		cutOffAge:      cfg.CutOffAge,
		evHandler:      ev,
		handler:        handler,
		mempool:        mp,
		blocks:         map[database.Hash]*blockInfo{cfg.Genesis.Hash(): &genesis},
		maxInfo:        &genesis,
	}

	ev("state: New: genesis: blk[%s]: utxos[%d]", cfg.Genesis.Hash(), pool.Len())
	metrics.maxHeight.Set(1)
	metrics.retained.Set(1)

	return &state, nil
}
